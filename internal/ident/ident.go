// Package ident canonicalizes user-supplied identifiers so that a
// spreadsheet cell and an archive filename can be compared directly.
//
// Identifiers arrive in messy forms: spreadsheet numeric cells come through
// as floats ("1.0" for 1), archive entries carry extensions ("P1.JPG"),
// and operators type stray whitespace and mixed case. Normalize collapses
// all of these into one comparable key.
package ident

import (
	"math"
	"strconv"
	"strings"
)

// ImageExtensions lists the file extensions treated as images throughout
// the pipeline (archive indexing, extension stripping, filename generation).
// All entries are lowercase and include the leading dot.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// IsImageExtension reports whether ext (with or without a leading dot,
// any case) is a recognized image extension.
func IsImageExtension(ext string) bool {
	if ext == "" {
		return false
	}
	e := strings.ToLower(ext)
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	for _, known := range ImageExtensions {
		if e == known {
			return true
		}
	}
	return false
}

// Normalize canonicalizes a raw identifier for matching. The rules are
// applied in order:
//
//  1. trim surrounding whitespace
//  2. collapse float artifacts: a value that parses as a float equal to
//     its integer truncation becomes the integer's string form ("1.0" -> "1")
//  3. strip a trailing recognized image extension ("P1.JPG" -> "P1")
//  4. collapse internal whitespace runs to single spaces
//  5. uppercase
//
// Two identifiers refer to the same image iff their normalized forms are
// equal. Normalize is pure and idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			s = strconv.FormatInt(int64(f), 10)
		}
	}

	lower := strings.ToLower(s)
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(lower, ext) {
			s = s[:len(s)-len(ext)]
			break
		}
	}

	s = strings.Join(strings.Fields(s), " ")

	return strings.ToUpper(s)
}
