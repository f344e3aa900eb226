package sheetml

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
)

// The writer emits the same namespace declarations Excel 2003 produces, so
// cleaned files open without a format prompt.
const workbookOpen = `<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"` +
	` xmlns:o="urn:schemas-microsoft-com:office:office"` +
	` xmlns:x="urn:schemas-microsoft-com:office:excel"` +
	` xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet"` +
	` xmlns:html="http://www.w3.org/TR/REC-html40">`

// Write serializes the table as a SpreadsheetML workbook at path, creating
// parent directories as needed.
func Write(t *models.Table, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes the table as a SpreadsheetML workbook. The mso-application
// processing instruction is always included, explicit cell indexes are
// preserved, and the table size attributes Excel chokes on
// (ExpandedRowCount and friends) are never emitted.
func Encode(t *models.Table, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintln(bw, `<?mso-application progid="Excel.Sheet"?>`)
	fmt.Fprintln(bw, workbookOpen)

	if t.DocPropsXML != "" {
		fmt.Fprintf(bw, " <o:DocumentProperties>%s</o:DocumentProperties>\n", t.DocPropsXML)
	}
	if t.StylesXML != "" {
		fmt.Fprintf(bw, " <Styles>%s</Styles>\n", t.StylesXML)
	}

	name := t.SheetName
	if name == "" {
		name = "Sheet1"
	}
	fmt.Fprintf(bw, " <Worksheet ss:Name=\"%s\">\n", escapeAttr(name))
	fmt.Fprintln(bw, "  <Table>")

	for _, col := range t.Columns {
		var attrs strings.Builder
		if col.Index > 0 {
			fmt.Fprintf(&attrs, ` ss:Index="%d"`, col.Index)
		}
		if col.StyleID != "" {
			fmt.Fprintf(&attrs, ` ss:StyleID="%s"`, escapeAttr(col.StyleID))
		}
		if col.Width != "" {
			fmt.Fprintf(&attrs, ` ss:Width="%s"`, escapeAttr(col.Width))
		}
		if col.Span != "" {
			fmt.Fprintf(&attrs, ` ss:Span="%s"`, escapeAttr(col.Span))
		}
		if col.AutoFitWidth != "" {
			fmt.Fprintf(&attrs, ` ss:AutoFitWidth="%s"`, escapeAttr(col.AutoFitWidth))
		}
		if col.Hidden != "" {
			fmt.Fprintf(&attrs, ` ss:Hidden="%s"`, escapeAttr(col.Hidden))
		}
		fmt.Fprintf(bw, "   <Column%s/>\n", attrs.String())
	}

	for _, row := range t.Rows {
		var attrs strings.Builder
		if row.Index > 0 {
			fmt.Fprintf(&attrs, ` ss:Index="%d"`, row.Index)
		}
		if row.StyleID != "" {
			fmt.Fprintf(&attrs, ` ss:StyleID="%s"`, escapeAttr(row.StyleID))
		}
		if row.Height != "" {
			fmt.Fprintf(&attrs, ` ss:Height="%s"`, escapeAttr(row.Height))
		}
		fmt.Fprintf(bw, "   <Row%s>\n", attrs.String())
		for _, c := range row.Cells {
			var attrs strings.Builder
			if c.Index > 0 {
				fmt.Fprintf(&attrs, ` ss:Index="%d"`, c.Index)
			}
			if c.StyleID != "" {
				fmt.Fprintf(&attrs, ` ss:StyleID="%s"`, escapeAttr(c.StyleID))
			}
			if c.Data == nil {
				fmt.Fprintf(bw, "    <Cell%s/>\n", attrs.String())
				continue
			}
			typ := c.Data.Type
			if typ == "" {
				typ = models.TypeString
			}
			fmt.Fprintf(bw, "    <Cell%s><Data ss:Type=\"%s\">%s</Data></Cell>\n",
				attrs.String(), typ, escapeText(c.Data.Text))
		}
		fmt.Fprintln(bw, "   </Row>")
	}

	fmt.Fprintln(bw, "  </Table>")
	fmt.Fprintln(bw, " </Worksheet>")
	fmt.Fprintln(bw, "</Workbook>")
	return bw.Flush()
}

func escapeText(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func escapeAttr(s string) string {
	return escapeText(s)
}
