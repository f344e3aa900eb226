// Package xlsxconv normalizes written SpreadsheetML batches, optionally
// rebuilding them as .xlsx workbooks, so downstream tools get a clean file
// without an Excel open/save round-trip.
package xlsxconv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/sheetml"
)

// CleanSave normalizes a written SpreadsheetML file. With toXlsx set the
// table is rebuilt as a sibling .xlsx workbook and that path is returned;
// otherwise the file is re-encoded in place through the canonical writer and
// the original path is returned.
func CleanSave(path string, toXlsx bool) (string, error) {
	table, err := sheetml.Load(path)
	if err != nil {
		return "", err
	}
	if !toXlsx {
		if err := sheetml.Write(table, path); err != nil {
			return "", err
		}
		return path, nil
	}

	outPath := strings.TrimSuffix(path, ".xml") + ".xlsx"
	if err := writeXlsx(table, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

func writeXlsx(t *models.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for rowIdx, row := range t.Rows {
		for _, pc := range row.Enumerate() {
			if pc.Cell.Data == nil {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(pc.Pos, rowIdx+1)
			if err != nil {
				return err
			}
			text := pc.Cell.Data.Text
			if pc.Cell.Data.Type == models.TypeNumber {
				if v, perr := strconv.ParseFloat(text, 64); perr == nil {
					if err := f.SetCellValue(sheet, cellName, v); err != nil {
						return err
					}
					continue
				}
			}
			if err := f.SetCellStr(sheet, cellName, text); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
