// Package fixers applies the fixed pipeline of per-row corrections to a wire
// print table.
package fixers

import (
	"path/filepath"
	"strings"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/textutil"
)

// Header names the fixers key on.
const (
	HeaderBeginText     = "Printer1 Wire1 BeginText"
	HeaderEndText       = "Printer1 Wire1 EndText"
	HeaderWireID        = "Wire ID"
	HeaderPrinterID     = "Printer1 ID"
	HeaderArticleGroup  = "Article Group"
	HeaderBeginDistance = "Printer1 Wire1 BeginDistance"
	HeaderEndlessDist   = "Printer1 Wire1 EndlessDistance"
	HeaderEndDistance   = "Printer1 Wire1 EndDistance"
	HeaderWireLength    = "Wire Length"
)

const stage = "fixers"

// Context carries the resolved table state a fixer run operates on.
type Context struct {
	Table *models.Table
	// HdrIdx is the header row index; data rows follow it.
	HdrIdx int
	// Headers maps normalized header text to 1-based column position.
	Headers map[string]int
	// Source is the input file path; several fixers key on its name.
	Source string
	Diags  *models.Diagnostics
}

// NewContext resolves the header row and header map for the table.
func NewContext(t *models.Table, source, anchor string, diags *models.Diagnostics) (*Context, error) {
	hdrIdx, err := t.FindHeaderRow(anchor, models.DefaultHeaderScanLimit)
	if err != nil {
		return nil, err
	}
	return &Context{
		Table:   t,
		HdrIdx:  hdrIdx,
		Headers: models.HeaderMap(t.Rows[hdrIdx]),
		Source:  source,
		Diags:   diags,
	}, nil
}

// Fixer is one named pipeline step. Run returns the number of changes made.
type Fixer struct {
	Name string
	Run  func(*Context) int
}

// Pipeline returns the fixers in their defined execution order. The order is
// part of the contract; the steps are not commutative in general.
func Pipeline() []Fixer {
	return []Fixer{
		{Name: "clear_printer_texts", Run: ClearPrinterTexts},
		{Name: "set_printer_id", Run: SetPrinterIDFromWireID},
		{Name: "set_article_group", Run: SetArticleGroup},
		{Name: "set_distances", Run: SetDistances},
		{Name: "fix_null_wire_length", Run: FixNullWireLength},
	}
}

// Apply runs the full pipeline and returns per-fixer change counts keyed by
// fixer name.
func Apply(ctx *Context) map[string]int {
	counts := make(map[string]int)
	for _, f := range Pipeline() {
		counts[f.Name] = f.Run(ctx)
	}
	return counts
}

// ClearPrinterTexts blanks the begin/end printer annotation columns wherever
// they hold text.
func ClearPrinterTexts(ctx *Context) int {
	changed := 0
	for _, name := range []string{HeaderBeginText, HeaderEndText} {
		col, ok := ctx.Headers[name]
		if !ok {
			ctx.Diags.Addf(stage, "header not found: %q", name)
			continue
		}
		for _, r := range ctx.Table.DataRows(ctx.HdrIdx) {
			c := r.CellMap()[col]
			if c == nil {
				continue
			}
			if c.Text() != "" {
				c.SetText("", models.TypeString)
				changed++
			}
		}
	}
	return changed
}

// SetPrinterIDFromWireID derives "AWG <wireid>" (hyphens and spaces removed)
// from the Wire ID column and writes it to the Printer1 ID column when it
// differs from the current value.
func SetPrinterIDFromWireID(ctx *Context) int {
	colWire, okWire := ctx.Headers[HeaderWireID]
	colPrn, okPrn := ctx.Headers[HeaderPrinterID]
	if !okWire || !okPrn {
		ctx.Diags.Addf(stage, "missing %q or %q headers", HeaderWireID, HeaderPrinterID)
		return 0
	}
	changed := 0
	for _, r := range ctx.Table.DataRows(ctx.HdrIdx) {
		wireText := strings.TrimSpace(r.CellMap()[colWire].Text())
		if wireText == "" {
			continue
		}
		cleaned := strings.NewReplacer("-", "", " ", "").Replace(wireText)
		newVal := "AWG " + cleaned
		prn := r.EnsureCellAt(colPrn)
		if prn.Text() != newVal {
			prn.SetText(newVal, models.TypeString)
			changed++
		}
	}
	return changed
}

// SetArticleGroup recomputes the Article Group label as
// "<job> <section><panel><gauge><color>". The job token is read from the
// label's current (pre-rewrite) value first, then guessed from the filename;
// an unresolvable suffix collapses to the literal "null".
func SetArticleGroup(ctx *Context) int {
	colAG, okAG := ctx.Headers[HeaderArticleGroup]
	colWire, okWire := ctx.Headers[HeaderWireID]
	if !okAG || !okWire {
		ctx.Diags.Addf(stage, "missing %q or %q headers", HeaderArticleGroup, HeaderWireID)
		return 0
	}
	section, panel := textutil.SectionPanel(ctx.Source)
	stem := textutil.Stem(ctx.Source)

	changed := 0
	for _, r := range ctx.Table.DataRows(ctx.HdrIdx) {
		cells := r.CellMap()
		curAG := cells[colAG].Text()

		job := textutil.LeadingToken(curAG)
		if job == "" {
			job = textutil.JobFromStem(stem)
		}
		if job == "" {
			job = textutil.NullToken
		}

		gc := textutil.GaugeColor(cells[colWire].Text())
		suffix := textutil.NullToken
		if section != textutil.NullToken && panel != textutil.NullToken && gc != textutil.NullToken {
			suffix = section + panel + gc
		}
		final := job + " " + suffix

		ag := r.EnsureCellAt(colAG)
		if ag.Text() != final {
			ag.SetText(final, models.TypeString)
			changed++
		}
	}
	return changed
}

// SetDistances forces the three distance columns to 0.79, 4, 0.79 as numbers
// on every data row.
func SetDistances(ctx *Context) int {
	needed := []string{HeaderBeginDistance, HeaderEndlessDist, HeaderEndDistance}
	cols := make([]int, 0, len(needed))
	for _, name := range needed {
		col, ok := ctx.Headers[name]
		if !ok {
			ctx.Diags.Addf(stage, "header not found: %q", name)
			return 0
		}
		cols = append(cols, col)
	}
	vals := []string{"0.79", "4", "0.79"}
	changed := 0
	for _, r := range ctx.Table.DataRows(ctx.HdrIdx) {
		for i, col := range cols {
			c := r.EnsureCellAt(col)
			if c.Text() != vals[i] {
				c.SetText(vals[i], models.TypeNumber)
				changed++
			}
		}
	}
	return changed
}

// FixNullWireLength rewrites Wire Length 300 to 200, but only for files
// whose name contains the literal "null".
func FixNullWireLength(ctx *Context) int {
	if !strings.Contains(filepath.Base(ctx.Source), "null") {
		return 0
	}
	col, ok := ctx.Headers[HeaderWireLength]
	if !ok {
		ctx.Diags.Addf(stage, "header not found: %q; cannot apply null-length fix", HeaderWireLength)
		return 0
	}
	changed := 0
	for _, r := range ctx.Table.DataRows(ctx.HdrIdx) {
		c := r.CellMap()[col]
		if c == nil {
			continue
		}
		if strings.TrimSpace(c.Text()) == "300" {
			c.SetText("200", models.TypeNumber)
			changed++
		}
	}
	return changed
}
