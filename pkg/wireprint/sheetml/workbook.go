package sheetml

import (
	"fmt"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
)

const defaultStyles = `<Style ss:ID="Default" ss:Name="Normal"/>`

// NewWorkbook builds a fresh single-sheet table with the given headers in
// row one, each cell explicitly indexed, plus extraCols generated headers
// ("Extra 1", "Extra 2", ...) to the right.
func NewWorkbook(sheetName string, headers []string, extraCols int) *models.Table {
	t := &models.Table{SheetName: sheetName, StylesXML: defaultStyles}

	hdr := &models.Row{}
	pos := 1
	for _, h := range headers {
		c := hdr.EnsureCellAt(pos)
		c.SetText(h, models.TypeString)
		pos++
	}
	for j := 0; j < extraCols; j++ {
		c := hdr.EnsureCellAt(pos)
		c.SetText(fmt.Sprintf("Extra %d", j+1), models.TypeString)
		pos++
	}
	t.Rows = append(t.Rows, hdr)
	return t
}
