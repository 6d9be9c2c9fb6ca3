package tabular

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// sheetNameLimit is the maximum sheet name length Excel accepts.
const sheetNameLimit = 31

func parseXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Raw cell values keep date cells as serial numbers, which the import
	// pipeline converts for date-like fields.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("could not read headers from file")
	}

	return sheetFromStrings(rows), nil
}

func parseXLS(data []byte) (*Sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	var rows [][]string
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("could not read headers from file")
	}

	return sheetFromStrings(rows), nil
}

func sheetFromStrings(rows [][]string) *Sheet {
	sheet := &Sheet{}
	for _, h := range rows[0] {
		sheet.Header = append(sheet.Header, trimHeader(h))
	}
	for _, rec := range rows[1:] {
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = makeCell(v)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func trimHeader(h string) string {
	return string(bytes.TrimSpace([]byte(h)))
}

// WriteXLSX builds an XLSX workbook with a single sheet holding the given
// header and rows. Presentation (fonts, widths) is intentionally left to
// the spreadsheet application.
func WriteXLSX(sheetName string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName
	if len(name) > sheetNameLimit {
		name = name[:sheetNameLimit]
	}
	if name == "" {
		name = "Sheet1"
	}
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return nil, fmt.Errorf("name sheet: %w", err)
		}
	}

	writeRow := func(rowIdx int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		return f.SetSheetRow(name, cell, &row)
	}

	if err := writeRow(1, header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := writeRow(i+2, row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
