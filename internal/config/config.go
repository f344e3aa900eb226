// Package config loads the optional wireprint.toml configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file looked up next to the executable and in
// the working directory.
const FileName = "wireprint.toml"

// Config is the application configuration. Command-line flags override it.
type Config struct {
	Output OutputConfig `toml:"output"`
	Crimp  CrimpConfig  `toml:"crimp"`
	Log    LogConfig    `toml:"log"`
}

// OutputConfig controls where and how batches are written.
type OutputConfig struct {
	Outdir       string `toml:"outdir"`
	HeaderAnchor string `toml:"header_anchor"`
	MaxPerFile   int    `toml:"max_per_file"`
	CleanSave    bool   `toml:"clean_save"`
	Xlsx         bool   `toml:"xlsx"`
}

// CrimpConfig controls the crimp engine defaults.
type CrimpConfig struct {
	Disabled       bool   `toml:"disabled"`
	RulesPath      string `toml:"rules_path"`
	CrimpID        string `toml:"crimp_id"`
	PreferWhenBoth string `toml:"prefer_when_both"`
}

// LogConfig controls logging and the optional run log database.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	DBPath string `toml:"db_path"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			HeaderAnchor: "Order ID",
			MaxPerFile:   150,
			CleanSave:    true,
		},
		Crimp: CrimpConfig{
			CrimpID:        "018769-025",
			PreferWhenBoth: "left",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads wireprint.toml from next to the executable, then from the
// working directory. A missing file yields the defaults; a malformed one is
// an error.
func Load() (*Config, error) {
	for _, dir := range searchDirs() {
		path := filepath.Join(dir, FileName)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		cfg := DefaultConfig()
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}
	return DefaultConfig(), nil
}

func searchDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return dirs
}
