package sheetml

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
)

const sampleDoc = `<?xml version="1.0"?>
<?mso-application progid="Excel.Sheet"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
 <Styles>
  <Style ss:ID="Default" ss:Name="Normal"/>
 </Styles>
 <Worksheet ss:Name="Wires">
  <Table ss:ExpandedRowCount="3" ss:ExpandedColumnCount="5">
   <Row>
    <Cell><Data ss:Type="String">Order ID</Data></Cell>
    <Cell ss:Index="3"><Data ss:Type="String">Wire ID</Data></Cell>
   </Row>
   <Row>
    <Cell><Data ss:Type="Number">1</Data></Cell>
    <Cell ss:Index="3"><Data ss:Type="String">18-WHT</Data></Cell>
    <Cell><Data ss:Type="String">next</Data></Cell>
   </Row>
  </Table>
 </Worksheet>
</Workbook>`

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if table.SheetName != "Wires" {
		t.Errorf("expected sheet name Wires, got %q", table.SheetName)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if !strings.Contains(table.StylesXML, `ss:ID="Default"`) {
		t.Errorf("styles not preserved: %q", table.StylesXML)
	}

	// Explicit index overrides the cursor, following cell continues at 4.
	data := table.Rows[1].Enumerate()
	wantPos := []int{1, 3, 4}
	for i, pc := range data {
		if pc.Pos != wantPos[i] {
			t.Errorf("cell %d: expected pos %d, got %d", i, wantPos[i], pc.Pos)
		}
	}
	if got := table.Rows[1].CellAt(3).Text(); got != "18-WHT" {
		t.Errorf("cell at column 3: expected 18-WHT, got %q", got)
	}
	if typ := table.Rows[1].CellAt(1).Data.Type; typ != models.TypeNumber {
		t.Errorf("expected Number type, got %q", typ)
	}
}

func TestParseNoTable(t *testing.T) {
	doc := `<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet">
 <Worksheet xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet" ss:Name="Empty"/>
</Workbook>`
	_, err := Parse(strings.NewReader(doc))
	if !errors.Is(err, ErrNoTable) {
		t.Fatalf("expected ErrNoTable, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("not xml at all <<<"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(table, &buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `<?mso-application progid="Excel.Sheet"?>`) {
		t.Error("missing mso-application processing instruction")
	}
	if strings.Contains(out, "ExpandedRowCount") {
		t.Error("table size attributes must not be re-emitted")
	}

	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if len(back.Rows) != len(table.Rows) {
		t.Fatalf("row count changed on round-trip: %d != %d", len(back.Rows), len(table.Rows))
	}
	if got := back.Rows[1].CellAt(3).Text(); got != "18-WHT" {
		t.Errorf("explicit index lost on round-trip, cell 3 = %q", got)
	}
	if typ := back.Rows[1].CellAt(1).Data.Type; typ != models.TypeNumber {
		t.Errorf("cell type lost on round-trip: %q", typ)
	}
}

const layoutDoc = `<?xml version="1.0"?>
<?mso-application progid="Excel.Sheet"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:o="urn:schemas-microsoft-com:office:office"
 xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
 <o:DocumentProperties>
  <o:Author>Production</o:Author>
 </o:DocumentProperties>
 <Styles>
  <Style ss:ID="Default" ss:Name="Normal"/>
 </Styles>
 <Worksheet ss:Name="Wires">
  <Table>
   <Column ss:Width="51.75"/>
   <Column ss:Index="3" ss:Width="120" ss:AutoFitWidth="0"/>
   <Row ss:Height="22.5">
    <Cell><Data ss:Type="String">Order ID</Data></Cell>
   </Row>
   <Row ss:Index="4" ss:StyleID="s21">
    <Cell><Data ss:Type="Number">1</Data></Cell>
   </Row>
  </Table>
 </Worksheet>
</Workbook>`

func TestRoundTripLayout(t *testing.T) {
	table, err := Parse(strings.NewReader(layoutDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !strings.Contains(table.DocPropsXML, "<o:Author>Production</o:Author>") {
		t.Errorf("document properties not captured: %q", table.DocPropsXML)
	}
	if len(table.Columns) != 2 {
		t.Fatalf("expected 2 column definitions, got %d", len(table.Columns))
	}
	if table.Columns[0].Width != "51.75" || table.Columns[1].Index != 3 {
		t.Errorf("column attributes lost: %+v", table.Columns)
	}
	if table.Rows[0].Height != "22.5" {
		t.Errorf("row height lost: %q", table.Rows[0].Height)
	}
	if table.Rows[1].Index != 4 || table.Rows[1].StyleID != "s21" {
		t.Errorf("row index/style lost: %+v", table.Rows[1])
	}

	var buf bytes.Buffer
	if err := Encode(table, &buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<o:Author>Production</o:Author>",
		`<Column ss:Width="51.75"/>`,
		`<Column ss:Index="3" ss:Width="120" ss:AutoFitWidth="0"/>`,
		`ss:Height="22.5"`,
		`ss:Index="4" ss:StyleID="s21"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded output missing %q", want)
		}
	}

	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if back.DocPropsXML != table.DocPropsXML {
		t.Error("document properties changed on round-trip")
	}
	if len(back.Columns) != 2 || back.Columns[1].AutoFitWidth != "0" {
		t.Errorf("column definitions changed on round-trip: %+v", back.Columns)
	}
	if back.Rows[1].Index != 4 {
		t.Errorf("row index changed on round-trip: %d", back.Rows[1].Index)
	}
}

func TestEncodeEscapes(t *testing.T) {
	table := &models.Table{Rows: []*models.Row{{}}}
	table.Rows[0].EnsureCellAt(1).SetText(`<a & "b">`, models.TypeString)

	var buf bytes.Buffer
	if err := Encode(table, &buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if got := back.Rows[0].CellAt(1).Text(); got != `<a & "b">` {
		t.Errorf("escaping broke round-trip: %q", got)
	}
}

func TestWriteLoad(t *testing.T) {
	table := NewWorkbook("MAIN", []string{"Order ID", "Pieces"}, 1)
	table.Rows = append(table.Rows, &models.Row{})
	table.Rows[1].EnsureCellAt(1).SetText("1", models.TypeNumber)

	path := filepath.Join(t.TempDir(), "out", "main.xml")
	if err := Write(table, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	hdr := models.HeaderMap(back.Rows[0])
	if hdr["Order ID"] != 1 || hdr["Pieces"] != 2 || hdr["Extra 1"] != 3 {
		t.Errorf("unexpected header map: %v", hdr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.xml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
