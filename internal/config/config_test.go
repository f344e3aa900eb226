package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if *cfg != *def {
		t.Errorf("got %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	doc := `
[output]
outdir = "C:/batches"
max_per_file = 80
clean_save = false

[crimp]
disabled = true
rules_path = "rules.json"

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Outdir != "C:/batches" {
		t.Errorf("outdir: %q", cfg.Output.Outdir)
	}
	if cfg.Output.MaxPerFile != 80 {
		t.Errorf("max_per_file: %d", cfg.Output.MaxPerFile)
	}
	if cfg.Output.CleanSave {
		t.Error("clean_save should be false")
	}
	if !cfg.Crimp.Disabled || cfg.Crimp.RulesPath != "rules.json" {
		t.Errorf("crimp: %+v", cfg.Crimp)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log: %+v", cfg.Log)
	}

	// Fields the file does not set keep their defaults.
	if cfg.Output.HeaderAnchor != "Order ID" {
		t.Errorf("header_anchor: %q", cfg.Output.HeaderAnchor)
	}
	if cfg.Crimp.CrimpID != "018769-025" {
		t.Errorf("crimp_id: %q", cfg.Crimp.CrimpID)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[output\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
