package wireprint

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/sheetml"
	"github.com/wireprint/wireprint-go/pkg/wireprint/textutil"
)

// MainHeaders are the columns of a MAIN order workbook, in order.
var MainHeaders = []string{
	"Order ID",
	"Pieces",
	"Pieces Batch",
	"Article Group",
	"Article ID",
	"Wirelist Link",
}

// MainsOptions configures BuildMains.
type MainsOptions struct {
	// TemplatePath is an optional MAIN template workbook; when empty a
	// fresh workbook is built.
	TemplatePath string
	// HeaderAnchor locates the header row in the template and in the wire
	// files being referenced.
	HeaderAnchor string
	// ExtraCols adds generated columns after "Wirelist Link" in
	// template-free mode; they are filled with "---" like any other
	// trailing column.
	ExtraCols int
	// CleanSave post-processes each written MAIN file when non-nil.
	CleanSave CleanSaveFunc
}

// MainsResult summarizes one BuildMains run.
type MainsResult struct {
	// Totals maps gauge+color group to the number of rows written.
	Totals map[string]int
	// Outputs are the written MAIN files, post clean-save.
	Outputs []string
	Diags   *models.Diagnostics
}

// BuildMains scans a directory of split wire files, groups them by the
// gauge+color token in their names, and writes one MAIN workbook per group
// referencing the group's wire files.
func BuildMains(wiresDir, outdir string, opts MainsOptions) (*MainsResult, error) {
	if opts.HeaderAnchor == "" {
		opts.HeaderAnchor = models.DefaultHeaderAnchor
	}

	entries, err := os.ReadDir(wiresDir)
	if err != nil {
		return nil, fmt.Errorf("wires directory: %w", err)
	}
	var wireFiles []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		wireFiles = append(wireFiles, filepath.Join(wiresDir, e.Name()))
	}
	if len(wireFiles) == 0 {
		return nil, fmt.Errorf("no .xml files found in %s: %w", wiresDir, ErrNoInputs)
	}

	groups := make(map[string][]string)
	for _, path := range wireFiles {
		gc := textutil.GaugeColorFromStem(textutil.Stem(path))
		groups[gc] = append(groups[gc], path)
	}
	keys := make([]string, 0, len(groups))
	for gc := range groups {
		keys = append(keys, gc)
	}
	sort.Strings(keys)

	res := &MainsResult{Totals: make(map[string]int), Diags: &models.Diagnostics{}}
	for _, gc := range keys {
		paths := groups[gc]
		sort.Strings(paths)

		outPath := filepath.Join(outdir, gc+"_main.xml")
		count, err := buildOneMain(paths, outPath, opts, res.Diags)
		if err != nil {
			return nil, err
		}
		if opts.CleanSave != nil {
			cleaned, err := opts.CleanSave(outPath)
			if err != nil {
				res.Diags.Addf("mains", "clean-save failed for %s: %v", outPath, err)
			} else if cleaned != "" {
				outPath = cleaned
			}
		}
		res.Totals[gc] = count
		res.Outputs = append(res.Outputs, outPath)
	}

	for _, d := range res.Diags.Entries() {
		slog.Warn(d.Message, "stage", d.Stage)
	}
	return res, nil
}

// buildOneMain assembles a single MAIN workbook referencing the given wire
// files, one row each, in sorted order.
func buildOneMain(wirePaths []string, outPath string, opts MainsOptions, diags *models.Diagnostics) (int, error) {
	var table *models.Table
	var hdrIdx int
	if opts.TemplatePath != "" {
		tpl, err := sheetml.Load(opts.TemplatePath)
		if err != nil {
			return 0, fmt.Errorf("template: %w", err)
		}
		hdrIdx, err = tpl.FindHeaderRow(opts.HeaderAnchor, models.DefaultHeaderScanLimit)
		if err != nil {
			return 0, fmt.Errorf("template: %w", err)
		}
		table = tpl.CloneHeaderOnly(hdrIdx)
	} else {
		table = sheetml.NewWorkbook("MAIN", MainHeaders, opts.ExtraCols)
		hdrIdx = 0
	}
	hdr := models.HeaderMap(table.Rows[hdrIdx])

	total := 0
	for _, refPath := range wirePaths {
		stem := textutil.Stem(refPath)

		ag := textutil.Normalize(firstDataValue(refPath, "Article Group", opts.HeaderAnchor, diags))
		articleID := ag
		if articleID == "" {
			articleID = textutil.Normalize(stem)
		}
		// Mirror a _NN chunk suffix of the wire file in the operator label.
		if sfx := textutil.ChunkSuffix(stem); sfx != "" && !strings.HasSuffix(articleID, sfx) {
			articleID += sfx
		}

		row := &models.Row{}
		setByHeader(row, hdr, "Order ID", "1", models.TypeNumber)
		setByHeader(row, hdr, "Pieces", "1", models.TypeNumber)
		setByHeader(row, hdr, "Pieces Batch", "1", models.TypeNumber)
		setByHeader(row, hdr, "Article Group", ag, models.TypeString)
		setByHeader(row, hdr, "Article ID", articleID, models.TypeString)
		setByHeader(row, hdr, "Wirelist Link", stem, models.TypeString)
		fillTrailingDashes(row, hdr)

		table.Rows = append(table.Rows, row)
		total++
	}

	if err := sheetml.Write(table, outPath); err != nil {
		return 0, err
	}
	return total, nil
}

func setByHeader(row *models.Row, hdr map[string]int, header, value string, typ models.CellType) {
	pos, ok := hdr[textutil.Normalize(header)]
	if !ok {
		return
	}
	row.EnsureCellAt(pos).SetText(textutil.Normalize(value), typ)
}

// fillTrailingDashes sets every header column right of "Wirelist Link" to
// the placeholder "---", in ascending column order.
func fillTrailingDashes(row *models.Row, hdr map[string]int) {
	wlPos, ok := hdr["Wirelist Link"]
	if !ok {
		return
	}
	var trailing []int
	for _, pos := range hdr {
		if pos > wlPos {
			trailing = append(trailing, pos)
		}
	}
	sort.Ints(trailing)
	for _, pos := range trailing {
		row.EnsureCellAt(pos).SetText("---", models.TypeString)
	}
}

// firstDataValue opens a wire file and returns the first non-empty value in
// the named column's data rows, or "" when the file or column cannot be
// read.
func firstDataValue(path, header, anchor string, diags *models.Diagnostics) string {
	t, err := sheetml.Load(path)
	if err != nil {
		diags.Addf("mains", "could not parse reference %s: %v", path, err)
		return ""
	}
	hdrIdx, err := t.FindHeaderRow(anchor, models.DefaultHeaderScanLimit)
	if err != nil {
		return ""
	}
	hdr := models.HeaderMap(t.Rows[hdrIdx])
	col, ok := hdr[textutil.Normalize(header)]
	if !ok {
		return ""
	}
	for _, r := range t.DataRows(hdrIdx) {
		if txt := textutil.Normalize(r.CellMap()[col].Text()); txt != "" {
			return txt
		}
	}
	return ""
}
