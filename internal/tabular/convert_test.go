package tabular

import "testing"

func TestIsDateField(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Date of Birth", true},
		{"DOB", true},
		{"Birth Date", true},
		{"Issue Date", true},
		{"Name", false},
		{"Roll No", false},
	}
	for _, tt := range tests {
		if got := IsDateField(tt.name); got != tt.want {
			t.Errorf("IsDateField(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestConvertCell(t *testing.T) {
	tests := []struct {
		name  string
		cell  Cell
		field string
		want  string
	}{
		{"plain text uppercased", Cell{Raw: "Aarav Sharma"}, "Name", "AARAV SHARMA"},
		{"text trimmed", Cell{Raw: "  b.tech  "}, "Course", "B.TECH"},
		{"float artifact collapses", makeCell("1001.0"), "Roll No", "1001"},
		{"true decimal kept", makeCell("3.5"), "CGPA", "3.5"},
		// serial 36526 is 2000-01-01
		{"date serial in dob field", makeCell("36526"), "Date of Birth", "01-01-2000"},
		{"date serial in birth field", makeCell("36526"), "Birth Year", "01-01-2000"},
		{"serial-looking number in plain field", makeCell("36526"), "Roll No", "36526"},
		{"serial out of range stays numeric", makeCell("70000"), "Date of Birth", "70000"},
		{"serial at lower bound stays numeric", makeCell("1"), "Date of Birth", "1"},
		{"empty", Cell{}, "Name", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertCell(tt.cell, tt.field); got != tt.want {
				t.Errorf("ConvertCell = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromSerial(t *testing.T) {
	got := FromSerial(36526)
	if got.Year() != 2000 || got.Month() != 1 || got.Day() != 1 {
		t.Errorf("FromSerial(36526) = %v, want 2000-01-01", got)
	}
	got = FromSerial(1)
	if got.Year() != 1899 || got.Month() != 12 || got.Day() != 31 {
		t.Errorf("FromSerial(1) = %v, want 1899-12-31", got)
	}
}

func TestCellIdentifier(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{makeCell("1001.0"), "1001"},
		{makeCell("1001"), "1001"},
		{Cell{Raw: " IMG_42 "}, "IMG_42"},
		{Cell{Raw: "aarav"}, "aarav"},
		{makeCell("2.5"), "2.5"},
	}
	for _, tt := range tests {
		if got := tt.cell.Identifier(); got != tt.want {
			t.Errorf("Identifier(%+v) = %q, want %q", tt.cell, got, tt.want)
		}
	}
}
