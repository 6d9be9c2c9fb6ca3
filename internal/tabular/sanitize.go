package tabular

import (
	"bytes"
	"unicode/utf8"
)

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement
// character. Exports from older Windows tools arrive in Windows-1252 more
// often than anyone would like; the alternative is a csv parser error that
// aborts the whole import.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
