package xlsxconv

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/sheetml"
)

func writeSample(t *testing.T, dir string) string {
	t.Helper()

	table := &models.Table{SheetName: "Wires"}
	hdr := &models.Row{}
	hdr.EnsureCellAt(1).SetText("Order ID", models.TypeString)
	hdr.EnsureCellAt(2).SetText("Wire Length", models.TypeString)
	table.Rows = append(table.Rows, hdr)

	r := &models.Row{}
	r.EnsureCellAt(1).SetText("1", models.TypeString)
	r.EnsureCellAt(2).SetText("200", models.TypeNumber)
	r.EnsureCellAt(4).SetText("sparse", models.TypeString)
	table.Rows = append(table.Rows, r)

	path := filepath.Join(dir, "s5DpC1418WHT.xml")
	if err := sheetml.Write(table, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCleanSaveInPlace(t *testing.T) {
	dir := t.TempDir()
	src := writeSample(t, dir)

	got, err := CleanSave(src, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != src {
		t.Errorf("in-place clean-save must keep the path, got %s", got)
	}

	table, err := sheetml.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows after re-encode, got %d", len(table.Rows))
	}
	if v := table.Rows[1].CellMap()[4].Text(); v != "sparse" {
		t.Errorf("sparse cell lost: %q", v)
	}
}

func TestCleanSaveToXlsx(t *testing.T) {
	dir := t.TempDir()
	src := writeSample(t, dir)

	got, err := CleanSave(src, true)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "s5DpC1418WHT.xlsx")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	f, err := excelize.OpenFile(got)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex("Wires"); idx < 0 {
		t.Error("sheet name not carried over")
	}
	checks := map[string]string{
		"A1": "Order ID",
		"B1": "Wire Length",
		"A2": "1",
		"B2": "200",
		"D2": "sparse",
	}
	for cell, want := range checks {
		v, err := f.GetCellValue("Wires", cell)
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Errorf("%s = %q, want %q", cell, v, want)
		}
	}
}

func TestCleanSaveMissingFile(t *testing.T) {
	if _, err := CleanSave(filepath.Join(t.TempDir(), "nope.xml"), true); err == nil {
		t.Fatal("expected error")
	}
}
