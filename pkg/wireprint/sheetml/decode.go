// Package sheetml reads and writes Excel 2003 XML (SpreadsheetML) tables.
//
// Only the parts of the format the pipeline needs are modeled: the first
// worksheet table, explicit per-cell column indexes, string/number data
// nodes, and the layout context around them (document properties, styles,
// column definitions, row attributes) carried for round-trips.
package sheetml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
)

// SpreadsheetNS is the SpreadsheetML namespace shared by the default and ss
// prefixes.
const SpreadsheetNS = "urn:schemas-microsoft-com:office:spreadsheet"

// ErrNoTable indicates the workbook has no worksheet table.
var ErrNoTable = errors.New("workbook has no table")

// ParseError wraps a malformed-input failure from the XML decoder.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type xmlWorkbook struct {
	XMLName    xml.Name       `xml:"urn:schemas-microsoft-com:office:spreadsheet Workbook"`
	DocProps   *xmlInnerBlock `xml:"urn:schemas-microsoft-com:office:office DocumentProperties"`
	Styles     *xmlInnerBlock `xml:"urn:schemas-microsoft-com:office:spreadsheet Styles"`
	Worksheets []xmlWorksheet `xml:"urn:schemas-microsoft-com:office:spreadsheet Worksheet"`
}

// xmlInnerBlock captures a subtree verbatim for round-tripping.
type xmlInnerBlock struct {
	Inner string `xml:",innerxml"`
}

type xmlWorksheet struct {
	Name  string    `xml:"urn:schemas-microsoft-com:office:spreadsheet Name,attr"`
	Table *xmlTable `xml:"urn:schemas-microsoft-com:office:spreadsheet Table"`
}

type xmlTable struct {
	Columns []xmlColumn `xml:"urn:schemas-microsoft-com:office:spreadsheet Column"`
	Rows    []xmlRow    `xml:"urn:schemas-microsoft-com:office:spreadsheet Row"`
}

type xmlColumn struct {
	Index        int    `xml:"urn:schemas-microsoft-com:office:spreadsheet Index,attr"`
	StyleID      string `xml:"urn:schemas-microsoft-com:office:spreadsheet StyleID,attr"`
	Width        string `xml:"urn:schemas-microsoft-com:office:spreadsheet Width,attr"`
	Span         string `xml:"urn:schemas-microsoft-com:office:spreadsheet Span,attr"`
	AutoFitWidth string `xml:"urn:schemas-microsoft-com:office:spreadsheet AutoFitWidth,attr"`
	Hidden       string `xml:"urn:schemas-microsoft-com:office:spreadsheet Hidden,attr"`
}

type xmlRow struct {
	Index   int       `xml:"urn:schemas-microsoft-com:office:spreadsheet Index,attr"`
	StyleID string    `xml:"urn:schemas-microsoft-com:office:spreadsheet StyleID,attr"`
	Height  string    `xml:"urn:schemas-microsoft-com:office:spreadsheet Height,attr"`
	Cells   []xmlCell `xml:"urn:schemas-microsoft-com:office:spreadsheet Cell"`
}

type xmlCell struct {
	Index   int      `xml:"urn:schemas-microsoft-com:office:spreadsheet Index,attr"`
	StyleID string   `xml:"urn:schemas-microsoft-com:office:spreadsheet StyleID,attr"`
	Data    *xmlData `xml:"urn:schemas-microsoft-com:office:spreadsheet Data"`
}

type xmlData struct {
	Type string `xml:"urn:schemas-microsoft-com:office:spreadsheet Type,attr"`
	Text string `xml:",chardata"`
}

// Load reads a SpreadsheetML file and returns its first worksheet table.
func Load(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return t, nil
}

// Parse decodes a SpreadsheetML document from r and returns its first
// worksheet table. Returns ErrNoTable when no worksheet carries a table.
func Parse(r io.Reader) (*models.Table, error) {
	var wb xmlWorkbook
	if err := xml.NewDecoder(r).Decode(&wb); err != nil {
		return nil, &ParseError{Err: err}
	}

	for _, ws := range wb.Worksheets {
		if ws.Table == nil {
			continue
		}
		t := &models.Table{SheetName: ws.Name}
		if wb.Styles != nil {
			t.StylesXML = wb.Styles.Inner
		}
		if wb.DocProps != nil {
			t.DocPropsXML = wb.DocProps.Inner
		}
		for _, xc := range ws.Table.Columns {
			t.Columns = append(t.Columns, models.Column{
				Index:        xc.Index,
				StyleID:      xc.StyleID,
				Width:        xc.Width,
				Span:         xc.Span,
				AutoFitWidth: xc.AutoFitWidth,
				Hidden:       xc.Hidden,
			})
		}
		for _, xr := range ws.Table.Rows {
			row := &models.Row{
				Index:   xr.Index,
				StyleID: xr.StyleID,
				Height:  xr.Height,
			}
			for _, xc := range xr.Cells {
				c := &models.Cell{Index: xc.Index, StyleID: xc.StyleID}
				if xc.Data != nil {
					c.Data = &models.CellData{
						Type: models.CellType(xc.Data.Type),
						Text: xc.Data.Text,
					}
				}
				row.Cells = append(row.Cells, c)
			}
			t.Rows = append(t.Rows, row)
		}
		return t, nil
	}
	return nil, ErrNoTable
}
