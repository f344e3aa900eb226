package wireprint

import (
	"log/slog"
	"path/filepath"

	"github.com/wireprint/wireprint-go/pkg/wireprint/crimp"
	"github.com/wireprint/wireprint-go/pkg/wireprint/fixers"
	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/sheetml"
	"github.com/wireprint/wireprint-go/pkg/wireprint/split"
)

// Result summarizes one processed input file.
type Result struct {
	Source string
	// FixerCounts maps fixer name to the number of changes it made.
	FixerCounts map[string]int
	// CrimpChanges is the number of rows the crimp engine changed.
	CrimpChanges int
	// Outputs are the written batch files, post clean-save.
	Outputs []string
	// Diags are the recoverable findings collected during the run.
	Diags *models.Diagnostics
}

// ProcessFile runs the whole pipeline for one input: load, fixers in their
// defined order, the crimp engine, then split and write the batches into
// outdir. Outputs are written only after the in-memory pipeline completes.
func ProcessFile(path, outdir string, opts Options) (*Result, error) {
	table, err := sheetml.Load(path)
	if err != nil {
		return nil, newProcessError(path, "load", err)
	}

	res := &Result{Source: path, Diags: &models.Diagnostics{}}

	ctx, err := fixers.NewContext(table, path, opts.HeaderAnchor, res.Diags)
	if err != nil {
		return nil, newProcessError(path, "header", err)
	}
	res.FixerCounts = fixers.Apply(ctx)

	if opts.AutoCrimp {
		if !opts.Rules.Empty() {
			res.CrimpChanges, err = crimp.ApplyRuleSet(table, path, opts.HeaderAnchor, opts.Rules)
		} else {
			res.CrimpChanges, err = crimp.ApplyBuiltin(table, path, opts.HeaderAnchor, crimp.BuiltinOptions{
				CrimpID:        opts.CrimpID,
				PreferWhenBoth: opts.PreferWhenBoth,
			})
		}
		if err != nil {
			return nil, newProcessError(path, "crimp", err)
		}
	}

	batches, err := split.ByGaugeColor(table, path, opts.HeaderAnchor, opts.MaxPerFile, res.Diags)
	if err != nil {
		return nil, newProcessError(path, "split", err)
	}

	for _, batch := range batches {
		outPath := filepath.Join(outdir, batch.Name+".xml")
		if err := sheetml.Write(batch.Table, outPath); err != nil {
			return nil, newProcessError(path, "write", err)
		}
		if opts.CleanSave != nil {
			cleaned, err := opts.CleanSave(outPath)
			if err != nil {
				res.Diags.Addf("write", "clean-save failed for %s: %v", outPath, err)
			} else if cleaned != "" {
				outPath = cleaned
			}
		}
		res.Outputs = append(res.Outputs, outPath)
	}

	for _, d := range res.Diags.Entries() {
		slog.Warn(d.Message, "file", path, "stage", d.Stage)
	}
	return res, nil
}
