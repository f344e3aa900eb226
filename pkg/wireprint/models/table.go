// Package models defines the in-memory table model for wire print sheets.
package models

import (
	"fmt"

	"github.com/wireprint/wireprint-go/pkg/wireprint/textutil"
)

// DefaultHeaderAnchor is the cell text that marks the header row.
const DefaultHeaderAnchor = "Order ID"

// DefaultHeaderScanLimit bounds how many leading rows are scanned for the
// header anchor.
const DefaultHeaderScanLimit = 80

// CellType tags the stored representation of a cell value.
type CellType string

const (
	// TypeString marks a text cell.
	TypeString CellType = "String"
	// TypeNumber marks a numeric cell; the text holds the canonical form.
	TypeNumber CellType = "Number"
)

// CellData is the value node of a cell. A cell without one reads as blank.
type CellData struct {
	Type CellType
	Text string
}

// Cell is a single table cell. Index is the explicit 1-based column position
// when the source carried one, and 0 when the position is implicit (one past
// the previous cell).
type Cell struct {
	Index   int
	StyleID string
	Data    *CellData
}

// Text returns the cell value, or "" when the cell has no data node.
func (c *Cell) Text() string {
	if c == nil || c.Data == nil {
		return ""
	}
	return c.Data.Text
}

// SetText overwrites the cell value and type, creating the data node when
// absent.
func (c *Cell) SetText(text string, typ CellType) {
	if c.Data == nil {
		c.Data = &CellData{}
	}
	c.Data.Type = typ
	c.Data.Text = text
}

// Row is an ordered, possibly sparse sequence of cells. Index, StyleID and
// Height carry the row-level source attributes; they are not interpreted,
// only round-tripped.
type Row struct {
	Index   int
	StyleID string
	Height  string
	Cells   []*Cell
}

// PosCell pairs a cell with its resolved 1-based column position.
type PosCell struct {
	Pos  int
	Cell *Cell
}

// Enumerate resolves the column position of every cell in the row. An
// explicit cell index overrides the running cursor, and the cursor continues
// from there; this mirrors the sparse indexing convention of the underlying
// format and must not be replaced by plain slice order.
func (r *Row) Enumerate() []PosCell {
	pos := 1
	out := make([]PosCell, 0, len(r.Cells))
	for _, c := range r.Cells {
		if c.Index > 0 {
			pos = c.Index
		}
		out = append(out, PosCell{Pos: pos, Cell: c})
		pos++
	}
	return out
}

// CellMap returns resolved column position -> cell for the row.
func (r *Row) CellMap() map[int]*Cell {
	m := make(map[int]*Cell, len(r.Cells))
	for _, pc := range r.Enumerate() {
		m[pc.Pos] = pc.Cell
	}
	return m
}

// CellAt returns the cell at the given 1-based column, or nil.
func (r *Row) CellAt(pos int) *Cell {
	for _, pc := range r.Enumerate() {
		if pc.Pos == pos {
			return pc.Cell
		}
	}
	return nil
}

// EnsureCellAt returns the cell at the given 1-based column, creating and
// appending an explicitly indexed cell when none exists. This is the single
// write entry point for every transformation; it never duplicates a column.
func (r *Row) EnsureCellAt(pos int) *Cell {
	if c := r.CellAt(pos); c != nil {
		return c
	}
	c := &Cell{Index: pos}
	r.Cells = append(r.Cells, c)
	return c
}

// Clone deep-copies the row.
func (r *Row) Clone() *Row {
	nr := &Row{
		Index:   r.Index,
		StyleID: r.StyleID,
		Height:  r.Height,
		Cells:   make([]*Cell, 0, len(r.Cells)),
	}
	for _, c := range r.Cells {
		nc := &Cell{Index: c.Index, StyleID: c.StyleID}
		if c.Data != nil {
			d := *c.Data
			nc.Data = &d
		}
		nr.Cells = append(nr.Cells, nc)
	}
	return nr
}

// Column is one table-level column definition, round-tripped as-is. Width
// and the flag attributes stay strings so the source spelling survives.
type Column struct {
	Index        int
	StyleID      string
	Width        string
	Span         string
	AutoFitWidth string
	Hidden       string
}

// Table is one worksheet table: an ordered sequence of rows plus the
// workbook context needed to write it back out.
type Table struct {
	// SheetName is the worksheet name the table came from.
	SheetName string
	// StylesXML preserves the workbook <Styles> block verbatim for
	// round-tripping; empty for tables built from scratch.
	StylesXML string
	// DocPropsXML preserves the <DocumentProperties> block the same way.
	DocPropsXML string
	// Columns are the table's column definitions, in source order.
	Columns []Column
	Rows    []*Row
}

// HeaderNotFoundError reports that no row within the scan window contained
// the header anchor.
type HeaderNotFoundError struct {
	Anchor string
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header row not found (anchor=%q)", e.Anchor)
}

// FindHeaderRow returns the index of the first row, within scanLimit rows,
// containing a cell whose normalized text equals anchor.
func (t *Table) FindHeaderRow(anchor string, scanLimit int) (int, error) {
	if scanLimit <= 0 || scanLimit > len(t.Rows) {
		scanLimit = len(t.Rows)
	}
	for i := 0; i < scanLimit; i++ {
		for _, pc := range t.Rows[i].Enumerate() {
			if textutil.Normalize(pc.Cell.Text()) == anchor {
				return i, nil
			}
		}
	}
	return 0, &HeaderNotFoundError{Anchor: anchor}
}

// HeaderMap builds normalized header text -> 1-based column position from
// the given row. Blank headers are skipped; a duplicated header keeps its
// last occurrence.
func HeaderMap(row *Row) map[string]int {
	m := make(map[string]int)
	for _, pc := range row.Enumerate() {
		if t := textutil.Normalize(pc.Cell.Text()); t != "" {
			m[t] = pc.Pos
		}
	}
	return m
}

// CloneHeaderOnly deep-copies the table keeping only the rows up to and
// including the header row at hdrIdx.
func (t *Table) CloneHeaderOnly(hdrIdx int) *Table {
	nt := &Table{
		SheetName:   t.SheetName,
		StylesXML:   t.StylesXML,
		DocPropsXML: t.DocPropsXML,
		Columns:     append([]Column(nil), t.Columns...),
	}
	for i := 0; i <= hdrIdx && i < len(t.Rows); i++ {
		nt.Rows = append(nt.Rows, t.Rows[i].Clone())
	}
	return nt
}

// DataRows returns the rows following the header row at hdrIdx.
func (t *Table) DataRows(hdrIdx int) []*Row {
	if hdrIdx+1 >= len(t.Rows) {
		return nil
	}
	return t.Rows[hdrIdx+1:]
}
