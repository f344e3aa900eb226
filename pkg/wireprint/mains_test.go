package wireprint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/sheetml"
)

// writeWireRef writes a minimal split wire file whose Article Group column
// holds the given label on its only data row.
func writeWireRef(t *testing.T, dir, name, articleGroup string) string {
	t.Helper()

	table := &models.Table{SheetName: "Wires"}
	hdr := &models.Row{}
	hdr.EnsureCellAt(1).SetText("Order ID", models.TypeString)
	hdr.EnsureCellAt(2).SetText("Article Group", models.TypeString)
	table.Rows = append(table.Rows, hdr)

	r := &models.Row{}
	r.EnsureCellAt(1).SetText("1", models.TypeString)
	if articleGroup != "" {
		r.EnsureCellAt(2).SetText(articleGroup, models.TypeString)
	}
	table.Rows = append(table.Rows, r)

	path := filepath.Join(dir, name)
	if err := sheetml.Write(table, path); err != nil {
		t.Fatalf("write wire ref: %v", err)
	}
	return path
}

func loadMain(t *testing.T, path string) (*models.Table, map[string]int, []*models.Row) {
	t.Helper()
	table, err := sheetml.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	hdrIdx, err := table.FindHeaderRow("Order ID", models.DefaultHeaderScanLimit)
	if err != nil {
		t.Fatal(err)
	}
	return table, models.HeaderMap(table.Rows[hdrIdx]), table.DataRows(hdrIdx)
}

func TestBuildMains(t *testing.T) {
	wires := t.TempDir()
	out := t.TempDir()
	writeWireRef(t, wires, "s5DpC1418WHT.xml", "20321P s5DpC1418WHT")
	writeWireRef(t, wires, "s5DpC1418WHT_02.xml", "20321P s5DpC1418WHT")
	writeWireRef(t, wires, "s5DpC1414GRY.xml", "")

	res, err := BuildMains(wires, out, MainsOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Outputs) != 2 {
		t.Fatalf("expected 2 MAIN files, got %v", res.Outputs)
	}
	// Groups are emitted in sorted order.
	if filepath.Base(res.Outputs[0]) != "14GRY_main.xml" {
		t.Errorf("first output: got %s", res.Outputs[0])
	}
	if filepath.Base(res.Outputs[1]) != "18WHT_main.xml" {
		t.Errorf("second output: got %s", res.Outputs[1])
	}
	if res.Totals["18WHT"] != 2 || res.Totals["14GRY"] != 1 {
		t.Errorf("totals: %v", res.Totals)
	}

	_, hdr, rows := loadMain(t, res.Outputs[1])
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows in 18WHT main, got %d", len(rows))
	}

	first := rows[0].CellMap()
	if got := first[hdr["Article Group"]].Text(); got != "20321P s5DpC1418WHT" {
		t.Errorf("article group: got %q", got)
	}
	if got := first[hdr["Article ID"]].Text(); got != "20321P s5DpC1418WHT" {
		t.Errorf("article id: got %q", got)
	}
	if got := first[hdr["Wirelist Link"]].Text(); got != "s5DpC1418WHT" {
		t.Errorf("wirelist link: got %q", got)
	}
	for _, h := range []string{"Order ID", "Pieces", "Pieces Batch"} {
		if got := first[hdr[h]].Text(); got != "1" {
			t.Errorf("%s: got %q, want 1", h, got)
		}
	}

	// The chunked file mirrors its _NN suffix in the operator label.
	second := rows[1].CellMap()
	if got := second[hdr["Article ID"]].Text(); got != "20321P s5DpC1418WHT_02" {
		t.Errorf("chunked article id: got %q", got)
	}
	if got := second[hdr["Wirelist Link"]].Text(); got != "s5DpC1418WHT_02" {
		t.Errorf("chunked wirelist link: got %q", got)
	}
}

func TestBuildMainsBlankArticleGroup(t *testing.T) {
	wires := t.TempDir()
	out := t.TempDir()
	writeWireRef(t, wires, "s5DpC1414GRY.xml", "")

	res, err := BuildMains(wires, out, MainsOptions{})
	if err != nil {
		t.Fatal(err)
	}
	_, hdr, rows := loadMain(t, res.Outputs[0])
	cells := rows[0].CellMap()
	if got := cells[hdr["Article Group"]].Text(); got != "" {
		t.Errorf("article group must stay blank, got %q", got)
	}
	// Article ID falls back to the filename stem.
	if got := cells[hdr["Article ID"]].Text(); got != "s5DpC1414GRY" {
		t.Errorf("article id: got %q", got)
	}
}

func TestBuildMainsExtraCols(t *testing.T) {
	wires := t.TempDir()
	out := t.TempDir()
	writeWireRef(t, wires, "s5DpC1418WHT.xml", "20321P s5DpC1418WHT")

	res, err := BuildMains(wires, out, MainsOptions{ExtraCols: 2})
	if err != nil {
		t.Fatal(err)
	}
	_, hdr, rows := loadMain(t, res.Outputs[0])
	cells := rows[0].CellMap()
	for _, h := range []string{"Extra 1", "Extra 2"} {
		pos, ok := hdr[h]
		if !ok {
			t.Fatalf("missing generated column %q", h)
		}
		if got := cells[pos].Text(); got != "---" {
			t.Errorf("%s: got %q, want ---", h, got)
		}
	}
}

func TestBuildMainsTemplate(t *testing.T) {
	dir := t.TempDir()
	wires := t.TempDir()
	out := t.TempDir()
	writeWireRef(t, wires, "s5DpC1418WHT.xml", "20321P s5DpC1418WHT")

	// A template with a title row above the header and a custom column order.
	tpl := &models.Table{SheetName: "Orders"}
	title := &models.Row{}
	title.EnsureCellAt(1).SetText("ORDER SHEET", models.TypeString)
	tpl.Rows = append(tpl.Rows, title)
	hdr := &models.Row{}
	for i, h := range []string{"Order ID", "Article ID", "Wirelist Link", "Remarks"} {
		hdr.EnsureCellAt(i+1).SetText(h, models.TypeString)
	}
	tpl.Rows = append(tpl.Rows, hdr)
	tplPath := filepath.Join(dir, "template.xml")
	if err := sheetml.Write(tpl, tplPath); err != nil {
		t.Fatal(err)
	}

	res, err := BuildMains(wires, out, MainsOptions{TemplatePath: tplPath})
	if err != nil {
		t.Fatal(err)
	}
	table, hdrMap, rows := loadMain(t, res.Outputs[0])
	if table.Rows[0].CellMap()[1].Text() != "ORDER SHEET" {
		t.Error("template title row not preserved")
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	cells := rows[0].CellMap()
	if got := cells[hdrMap["Wirelist Link"]].Text(); got != "s5DpC1418WHT" {
		t.Errorf("wirelist link: got %q", got)
	}
	// Columns right of Wirelist Link get the placeholder.
	if got := cells[hdrMap["Remarks"]].Text(); got != "---" {
		t.Errorf("remarks: got %q, want ---", got)
	}
}

func TestBuildMainsUnknownGroup(t *testing.T) {
	wires := t.TempDir()
	out := t.TempDir()
	writeWireRef(t, wires, "notes.xml", "")

	res, err := BuildMains(wires, out, MainsOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Outputs) != 1 || filepath.Base(res.Outputs[0]) != "unknown_main.xml" {
		t.Fatalf("expected unknown_main.xml, got %v", res.Outputs)
	}
}

func TestFillTrailingDashesOrder(t *testing.T) {
	hdr := map[string]int{
		"Order ID": 1, "Pieces": 2, "Pieces Batch": 3, "Article Group": 4,
		"Article ID": 5, "Wirelist Link": 6, "A": 7, "B": 8, "C": 9,
		"D": 10, "E": 11, "F": 12, "G": 13, "H": 14,
	}
	// The trailing cells must come out in ascending column order every time,
	// so the emitted cell sequence is stable run to run.
	for run := 0; run < 30; run++ {
		row := &models.Row{}
		fillTrailingDashes(row, hdr)
		if len(row.Cells) != 8 {
			t.Fatalf("expected 8 trailing cells, got %d", len(row.Cells))
		}
		for i, c := range row.Cells {
			if want := 7 + i; c.Index != want {
				t.Fatalf("run %d: cell %d has index %d, want %d", run, i, c.Index, want)
			}
			if c.Text() != "---" {
				t.Errorf("cell %d: got %q", i, c.Text())
			}
		}
	}
}

func TestBuildMainsNoInputs(t *testing.T) {
	_, err := BuildMains(t.TempDir(), t.TempDir(), MainsOptions{})
	if !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
}

func TestBuildMainsUnreadableReference(t *testing.T) {
	wires := t.TempDir()
	out := t.TempDir()
	writeWireRef(t, wires, "s5DpC1418WHT.xml", "20321P s5DpC1418WHT")

	// A second group member that is not SpreadsheetML at all.
	bad := filepath.Join(wires, "s5DpC1414GRY.xml")
	if err := os.WriteFile(bad, []byte("not xml"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := BuildMains(wires, out, MainsOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Totals["14GRY"] != 1 {
		t.Errorf("unreadable reference still gets a row, totals: %v", res.Totals)
	}
	if res.Diags.Len() == 0 {
		t.Error("expected a parse diagnostic")
	}
	_, hdr, rows := loadMain(t, res.Outputs[0])
	if got := rows[0].CellMap()[hdr["Article ID"]].Text(); got != "s5DpC1414GRY" {
		t.Errorf("article id falls back to the stem, got %q", got)
	}
}
