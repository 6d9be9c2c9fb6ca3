// Package naming generates storage filenames for card images.
//
// A first upload gets a 14-digit name derived from the wall clock
// (HHMMSS + milliseconds + microseconds + a two-digit batch ordinal).
// Every later re-upload of the same logical image keeps that 14-digit
// lineage signature and appends an "_HHMMSS" revision suffix, so the
// lineage of any stored key can be recovered by inspecting its prefix.
//
// Uniqueness rests on the wall clock plus the caller-supplied ordinal
// folded modulo 100: two processes writing the same folder in the same
// microsecond can collide. That is a documented limitation of the naming
// scheme, not something this package papers over.
//
// Name generation never fails: when an input cannot be parsed the
// functions fall back to an opaque random name.
package naming

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardforge/cardforge/internal/ident"
)

const (
	lineageLen       = 14
	legacyLineageLen = 13 // names generated before the ordinal digit was widened
	revisionLen      = 6  // HHMMSS
)

// now is overridable in tests.
var now = time.Now

// NewName builds a filename for a first-time image upload.
//
// The layout is HHMMSS (wall clock), three digits of milliseconds, three
// digits of microseconds, and the batch ordinal modulo 100. Callers must
// start the ordinal at 1 and increment it per image within one pipeline
// invocation; it is what keeps names distinct when a batch writes faster
// than the clock ticks.
func NewName(ext string, ordinal int) string {
	t := now()

	micros := t.Nanosecond() / 1e3
	name := fmt.Sprintf("%s%03d%03d%02d%s",
		t.Format("150405"),
		micros/1000,
		micros%1000,
		ordinal%100,
		normalizeExt(ext),
	)
	return name
}

// VersionedName builds a filename for a re-upload of an existing image.
// It extracts the original lineage signature from existingKey and appends
// a fresh HHMMSS revision suffix, so successive updates share a prefix
// while remaining distinguishable. Keys that do not carry a recognizable
// lineage fall back to NewName.
func VersionedName(existingKey, newExt string) string {
	base := path.Base(existingKey)
	stem, currentExt := splitExt(base)

	ext := newExt
	if ext == "" {
		ext = currentExt
	}
	ext = normalizeExt(ext)

	lineage, ok := lineageOf(stem)
	if !ok {
		return NewName(ext, 1)
	}
	return lineage + "_" + now().Format("150405") + ext
}

// Lineage extracts the immutable lineage signature from a stored key.
// It returns false for keys that were not produced by this package.
func Lineage(key string) (string, bool) {
	stem, _ := splitExt(path.Base(key))
	return lineageOf(stem)
}

// FallbackName returns an opaque collision-resistant name, used when
// a storage write under the generated name fails.
func FallbackName(ext string) string {
	return "img" + strings.ReplaceAll(uuid.New().String(), "-", "")[:10] + normalizeExt(ext)
}

func lineageOf(stem string) (string, bool) {
	lineage := stem
	if i := strings.IndexByte(stem, '_'); i >= 0 {
		lineage = stem[:i]
	}
	if len(lineage) != lineageLen && len(lineage) != legacyLineageLen {
		return "", false
	}
	for _, c := range lineage {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return lineage, true
}

// normalizeExt coerces ext into a usable image extension, defaulting to
// ".jpg" for anything unrecognized.
func normalizeExt(ext string) string {
	e := strings.ToLower(strings.TrimSpace(ext))
	if e == "" {
		return ".jpg"
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	if !ident.IsImageExtension(e) {
		return ".jpg"
	}
	return e
}

func splitExt(name string) (stem, ext string) {
	ext = path.Ext(name)
	return name[:len(name)-len(ext)], ext
}
