package tabular

import (
	"testing"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"zip magic", []byte{'P', 'K', 0x03, 0x04, 0}, FormatXLSX},
		{"compound file magic", []byte{0xD0, 0xCF, 0x11, 0xE0}, FormatXLS},
		{"plain text", []byte("Name,Roll No\n"), FormatCSV},
		{"bom text", []byte{0xEF, 0xBB, 0xBF, 'a'}, FormatCSV},
		{"empty", nil, FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	data := []byte("Name, Roll No ,Photo\nAarav Sharma,1001,1\nPriya Patel,1002,2\n")

	sheet, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantHeader := []string{"Name", "Roll No", "Photo"}
	if len(sheet.Header) != 3 {
		t.Fatalf("header = %v", sheet.Header)
	}
	for i, h := range wantHeader {
		if sheet.Header[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, sheet.Header[i], h)
		}
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0][0].Raw != "Aarav Sharma" || sheet.Rows[1][2].Raw != "2" {
		t.Errorf("rows parsed wrong: %+v", sheet.Rows)
	}
}

func TestParseCSVSkipsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Name\nvalue\n")...)

	sheet, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sheet.Header[0] != "Name" {
		t.Errorf("BOM leaked into header: %q", sheet.Header[0])
	}
}

func TestParseCSVSanitizesInvalidUTF8(t *testing.T) {
	data := []byte("Name\ncaf\xe9\n") // Latin-1 byte

	sheet, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sheet.Rows[0][0].Raw != "caf�" {
		t.Errorf("cell = %q, want replacement char", sheet.Rows[0][0].Raw)
	}
}

func TestParseRejectsTinyFile(t *testing.T) {
	if _, err := Parse([]byte("ab")); err == nil {
		t.Error("Parse accepted a 2-byte file")
	}
}

func TestParseXLSXRoundTrip(t *testing.T) {
	data, err := WriteXLSX("Students", []string{"Name", "Roll No"}, [][]string{
		{"AARAV SHARMA", "1001"},
		{"PRIYA PATEL", "1002"},
	})
	if err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	if Sniff(data) != FormatXLSX {
		t.Fatal("written workbook does not sniff as xlsx")
	}

	sheet, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(sheet.Header) != 2 || sheet.Header[0] != "Name" || sheet.Header[1] != "Roll No" {
		t.Fatalf("header = %v", sheet.Header)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0][0].Raw != "AARAV SHARMA" {
		t.Errorf("cell = %q", sheet.Rows[0][0].Raw)
	}
	// "1001" comes back as a numeric cell from the spreadsheet parser.
	if !sheet.Rows[0][1].IsNumber || sheet.Rows[0][1].Number != 1001 {
		t.Errorf("numeric cell = %+v", sheet.Rows[0][1])
	}
}

func TestWriteXLSXLongSheetName(t *testing.T) {
	name := "a table with an unreasonably long name well past the limit"
	data, err := WriteXLSX(name, []string{"A"}, nil)
	if err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	if _, err := Parse(data); err != nil {
		t.Fatalf("Parse of long-named sheet: %v", err)
	}
}

func TestMakeCell(t *testing.T) {
	tests := []struct {
		raw        string
		wantNumber bool
		want       float64
	}{
		{"1001", true, 1001},
		{"1.5", true, 1.5},
		{" 42 ", true, 42},
		{"Aarav", false, 0},
		{"", false, 0},
		{"12A", false, 0},
	}
	for _, tt := range tests {
		c := makeCell(tt.raw)
		if c.IsNumber != tt.wantNumber || (c.IsNumber && c.Number != tt.want) {
			t.Errorf("makeCell(%q) = %+v", tt.raw, c)
		}
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]Cell{{Raw: " "}, {Raw: ""}}) {
		t.Error("blank row not detected")
	}
	if IsEmptyRow([]Cell{{Raw: ""}, {Raw: "x"}}) {
		t.Error("non-empty row reported empty")
	}
	if !IsEmptyRow(nil) {
		t.Error("nil row should be empty")
	}
}
