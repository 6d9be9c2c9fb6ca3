package tabular

// convert.go turns parsed cells into the string values stored on records.
//
// Two spreadsheet quirks live here: numeric cells that are really dates
// (Excel stores dates as day counts from its epoch) and float artifacts
// (a cell typed as 1 arriving as 1.0). Which numeric cells are dates is
// decided by the destination field's name, mirroring how operators label
// their columns.

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Excel's day-serial epoch. Day 1 is 1900-01-01, but the epoch sits at
// 1899-12-30 to absorb the historical leap-year-1900 bug.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// serial bounds within which a numeric cell is plausibly a date
// (1900 through roughly 2064).
const (
	minDateSerial = 1
	maxDateSerial = 60000
)

// dateFieldHints mark field names whose numeric cells are interpreted as
// date serials.
var dateFieldHints = []string{"date", "dob", "birth"}

// IsDateField reports whether the field name suggests date content.
func IsDateField(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range dateFieldHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// FromSerial converts an Excel date serial to a calendar date.
func FromSerial(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(serial))
}

// ConvertCell renders a cell as the string stored on a record. All text
// is uppercased on write; numeric cells collapse float artifacts; numeric
// cells destined for date-like fields convert from the day-serial
// convention and format as DD-MM-YYYY.
func ConvertCell(cell Cell, fieldName string) string {
	if cell.IsNumber {
		v := cell.Number
		if IsDateField(fieldName) && v > minDateSerial && v < maxDateSerial {
			return FromSerial(v).Format("02-01-2006")
		}
		return strings.ToUpper(formatNumber(v))
	}
	return strings.ToUpper(strings.TrimSpace(cell.Raw))
}

// Identifier renders a cell as an image-reference identifier: float
// artifacts collapse to the integer form, everything else is the trimmed
// text. Further canonicalization (case, extensions) is the normalizer's
// job.
func (c Cell) Identifier() string {
	if c.IsNumber {
		return formatNumber(c.Number)
	}
	return strings.TrimSpace(c.Raw)
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
