// Package tabular parses operator-supplied tabular files into a uniform
// header-plus-rows shape.
//
// Three input formats are accepted: delimited text (UTF-8, optional BOM),
// XLSX workbooks, and legacy BIFF .xls workbooks. The format is detected
// from the leading bytes, never from the file extension, because operators
// rename files freely and extensions routinely lie.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format identifies a tabular input format.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
	FormatXLS
)

func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatXLS:
		return "xls"
	default:
		return "csv"
	}
}

// Cell is one parsed cell. Spreadsheet formats report numeric cells with
// IsNumber set so that date serials and float artifacts can be handled;
// delimited text yields string cells only.
type Cell struct {
	Raw      string
	Number   float64
	IsNumber bool
}

// Sheet is a parsed tabular file: one header row and zero or more data
// rows. Row cells are positional; a row may be shorter than the header.
type Sheet struct {
	Header []string
	Rows   [][]Cell
}

// Sniff detects the file format from its magic bytes: "PK" marks a ZIP
// container (XLSX), 0xD0 0xCF marks the legacy compound-file format (XLS),
// anything else is treated as delimited text.
func Sniff(data []byte) Format {
	if len(data) >= 2 {
		if data[0] == 'P' && data[1] == 'K' {
			return FormatXLSX
		}
		if data[0] == 0xD0 && data[1] == 0xCF {
			return FormatXLS
		}
	}
	return FormatCSV
}

// Parse reads a tabular file of any supported format.
func Parse(data []byte) (*Sheet, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("file is too small or empty")
	}

	switch Sniff(data) {
	case FormatXLSX:
		return parseXLSX(data)
	case FormatXLS:
		return parseXLS(data)
	default:
		return parseCSV(data)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseCSV(data []byte) (*Sheet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("could not read headers from file")
	}

	sheet := &Sheet{}
	for _, h := range records[0] {
		sheet.Header = append(sheet.Header, strings.TrimSpace(h))
	}
	for _, rec := range records[1:] {
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = Cell{Raw: v}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// makeCell builds a Cell from a raw spreadsheet value, detecting numerics.
func makeCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return Cell{Raw: raw, Number: f, IsNumber: true}
		}
	}
	return Cell{Raw: raw}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return strings.TrimSpace(c.Raw) == ""
}

// IsEmptyRow reports whether every cell in the row is empty.
func IsEmptyRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
