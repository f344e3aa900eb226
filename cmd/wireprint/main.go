// Package main provides the CLI entry point for wireprint.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wireprint/wireprint-go/internal/config"
	"github.com/wireprint/wireprint-go/internal/logging"
	"github.com/wireprint/wireprint-go/internal/runlog"
	"github.com/wireprint/wireprint-go/internal/xlsxconv"
	"github.com/wireprint/wireprint-go/pkg/wireprint"
	"github.com/wireprint/wireprint-go/pkg/wireprint/crimp"
)

// defaultRulesFile is auto-loaded from the executable or working directory
// when --rules is not given.
const defaultRulesFile = "crimp_rules.json"

var (
	outdir         string
	headerAnchor   string
	maxPerFile     int
	noAutoCrimp    bool
	crimpID        string
	preferWhenBoth string
	rulesPath      string
	noCleanSave    bool
	toXlsx         bool

	templatePath string
	fillAfter    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wireprint",
		Short: "Fix and split wire print sheets (Excel 2003 XML)",
		Long: `wireprint normalizes per-wire manufacturing sheets, assigns crimp
terminal identifiers, and splits the result into bounded batches grouped by
gauge+color. It can also assemble MAIN order workbooks from split batches.`,
		SilenceUsage: true,
	}

	fixCmd := &cobra.Command{
		Use:   "fix [input.xml]...",
		Short: "Apply the fixer pipeline, auto-crimp, and split into batches",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFix,
	}
	fixCmd.Flags().StringVarP(&outdir, "outdir", "o", "", "Output folder for split files (default from wireprint.toml)")
	fixCmd.Flags().StringVar(&headerAnchor, "header-anchor", "", "Header row anchor text (default \"Order ID\")")
	fixCmd.Flags().IntVar(&maxPerFile, "max-per-file", 0, "Max wires per output file (default 150)")
	fixCmd.Flags().BoolVar(&noAutoCrimp, "no-auto-crimp", false, "Disable the crimp engine")
	fixCmd.Flags().StringVar(&crimpID, "crimp-id", "", "Crimp ID for the builtin rule (default "+crimp.DefaultCrimpID+")")
	fixCmd.Flags().StringVar(&preferWhenBoth, "prefer-when-both", "", "Side when both endpoints match: left or right")
	fixCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to a crimp rules JSON file")
	fixCmd.Flags().BoolVar(&noCleanSave, "no-clean-save", false, "Skip the output normalization pass")
	fixCmd.Flags().BoolVar(&toXlsx, "xlsx", false, "Rebuild outputs as .xlsx workbooks")

	mainsCmd := &cobra.Command{
		Use:   "mains [wires-dir]",
		Short: "Build MAIN order workbooks from a directory of split batches",
		Args:  cobra.ExactArgs(1),
		RunE:  runMains,
	}
	mainsCmd.Flags().StringVarP(&outdir, "outdir", "o", "", "Output folder for MAIN files (default from wireprint.toml)")
	mainsCmd.Flags().StringVar(&templatePath, "template", "", "MAIN template workbook (keeps its styles)")
	mainsCmd.Flags().StringVar(&headerAnchor, "header-anchor", "", "Header row anchor text (default \"Order ID\")")
	mainsCmd.Flags().IntVar(&fillAfter, "fill-after", 0, "Template-free mode: extra columns after Wirelist Link")
	mainsCmd.Flags().BoolVar(&noCleanSave, "no-clean-save", false, "Skip the output normalization pass")
	mainsCmd.Flags().BoolVar(&toXlsx, "xlsx", false, "Rebuild outputs as .xlsx workbooks")

	rootCmd.AddCommand(fixCmd, mainsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFix(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	dir, err := resolveOutdir(outdir, cfg.Output.Outdir)
	if err != nil {
		return err
	}

	opts := buildOptions(cmd, cfg)

	var store *runlog.Store
	if cfg.Log.DBPath != "" {
		store, err = runlog.Open(cfg.Log.DBPath)
		if err != nil {
			slog.Warn("run log unavailable", "error", err)
		} else {
			defer store.Close()
		}
	}

	failed := 0
	for _, input := range args {
		var logID int64
		if store != nil {
			if logID, err = store.Start(input); err != nil {
				slog.Warn("run log entry failed", "error", err)
				logID = 0
			}
		}

		res, err := wireprint.ProcessFile(input, dir, opts)
		if err != nil {
			slog.Error("file failed", "file", input, "error", err)
			failed++
			recordFinish(store, logID, nil, 0, 0, "failed", err.Error())
			continue
		}

		total := 0
		for _, n := range res.FixerCounts {
			total += n
		}
		slog.Info("file processed",
			"file", input,
			"fix_changes", total,
			"crimp_changes", res.CrimpChanges,
			"outputs", len(res.Outputs),
		)
		for _, out := range res.Outputs {
			fmt.Println(" -", out)
		}
		recordFinish(store, logID, res.FixerCounts, res.CrimpChanges, len(res.Outputs), "completed", "")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
	}
	return nil
}

func runMains(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	dir, err := resolveOutdir(outdir, cfg.Output.Outdir)
	if err != nil {
		return err
	}

	anchor := cfg.Output.HeaderAnchor
	if cmd.Flags().Changed("header-anchor") {
		anchor = headerAnchor
	}

	res, err := wireprint.BuildMains(args[0], dir, wireprint.MainsOptions{
		TemplatePath: templatePath,
		HeaderAnchor: anchor,
		ExtraCols:    fillAfter,
		CleanSave:    cleanSaveFunc(cfg),
	})
	if err != nil {
		return err
	}

	for _, out := range res.Outputs {
		fmt.Println(" -", out)
	}
	slog.Info("mains built", "files", len(res.Outputs))
	return nil
}

// resolveOutdir picks the output folder: the --outdir flag when given,
// otherwise the configured output.outdir.
func resolveOutdir(flagVal, cfgVal string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if cfgVal != "" {
		return cfgVal, nil
	}
	return "", fmt.Errorf("no output folder: pass --outdir or set output.outdir in %s", config.FileName)
}

// buildOptions folds config-file defaults and command-line overrides into
// the run options. Flags win when set.
func buildOptions(cmd *cobra.Command, cfg *config.Config) wireprint.Options {
	opts := wireprint.DefaultOptions()

	if cfg.Output.HeaderAnchor != "" {
		opts.HeaderAnchor = cfg.Output.HeaderAnchor
	}
	if cfg.Output.MaxPerFile > 0 {
		opts.MaxPerFile = cfg.Output.MaxPerFile
	}
	opts.AutoCrimp = !cfg.Crimp.Disabled
	if cfg.Crimp.CrimpID != "" {
		opts.CrimpID = cfg.Crimp.CrimpID
	}
	if cfg.Crimp.PreferWhenBoth != "" {
		opts.PreferWhenBoth = cfg.Crimp.PreferWhenBoth
	}

	if cmd.Flags().Changed("header-anchor") {
		opts.HeaderAnchor = headerAnchor
	}
	if cmd.Flags().Changed("max-per-file") {
		opts.MaxPerFile = maxPerFile
	}
	if noAutoCrimp {
		opts.AutoCrimp = false
	}
	if cmd.Flags().Changed("crimp-id") {
		opts.CrimpID = crimpID
	}
	if cmd.Flags().Changed("prefer-when-both") {
		opts.PreferWhenBoth = preferWhenBoth
	}

	opts.Rules = loadRules(cfg)
	opts.CleanSave = cleanSaveFunc(cfg)
	return opts
}

// loadRules loads the declarative rule set: --rules first, then the
// configured path, then crimp_rules.json next to the executable or in the
// working directory. A malformed set degrades to the builtin rule.
func loadRules(cfg *config.Config) *crimp.RuleSet {
	path := rulesPath
	if path == "" {
		path = cfg.Crimp.RulesPath
	}
	if path == "" {
		for _, dir := range defaultRulesDirs() {
			candidate := filepath.Join(dir, defaultRulesFile)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return nil
	}

	rs, err := crimp.LoadRules(path)
	if err != nil {
		slog.Warn("failed to load rules file, falling back to builtin rule",
			"path", path, "error", err)
		return nil
	}
	return rs
}

func defaultRulesDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return dirs
}

func cleanSaveFunc(cfg *config.Config) wireprint.CleanSaveFunc {
	cleanSave := cfg.Output.CleanSave
	if noCleanSave {
		cleanSave = false
	}
	xlsx := cfg.Output.Xlsx || toXlsx
	if !cleanSave {
		return nil
	}
	return func(path string) (string, error) {
		return xlsxconv.CleanSave(path, xlsx)
	}
}

func recordFinish(store *runlog.Store, id int64, fixerCounts map[string]int, crimps, outputs int, status, errMsg string) {
	if store == nil || id == 0 {
		return
	}
	if err := store.Finish(id, fixerCounts, crimps, outputs, status, errMsg); err != nil {
		slog.Warn("run log update failed", "error", err)
	}
}
