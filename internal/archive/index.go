// Package archive indexes ZIP containers of card images by normalized
// identifier.
//
// Construction reads only the ZIP central directory, so an archive holding
// thousands of photos costs a map of names until an entry is actually
// requested. Get decompresses and validates a single entry on demand;
// entries that turn out to be corrupt are reported as absent, so callers
// must tolerate Contains returning true for an entry Get later rejects.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cardforge/cardforge/internal/ident"
)

// MaxEntrySize caps how many uncompressed bytes Get will read for a single
// entry, guarding against zip bombs.
const MaxEntrySize = 64 << 20 // 64MB

// Entry is one extracted, validated image.
type Entry struct {
	Identifier   string // normalized lookup key
	Ext          string // lowercase, with dot
	OriginalName string // base filename inside the archive
	Bytes        []byte
}

// Info is entry metadata available without reading any bytes.
type Info struct {
	Ext          string
	OriginalName string
}

// Index is a request-scoped lookup structure over one ZIP archive.
// Close must be called on every exit path; it releases the underlying
// handle when the index owns one.
type Index struct {
	entries map[string]*zip.File
	infos   map[string]Info
	closer  io.Closer
}

// FromBytes builds an index over an in-memory archive, the common case for
// uploads that were already received in full.
func FromBytes(data []byte) (*Index, error) {
	return OpenIndex(bytes.NewReader(data), int64(len(data)))
}

// OpenIndex builds an index over an archive accessible through r. Only the
// entry table is read; no image is decompressed. If r is also an io.Closer
// the index takes ownership and Close releases it.
func OpenIndex(r io.ReaderAt, size int64) (*Index, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	ix := &Index{
		entries: make(map[string]*zip.File),
		infos:   make(map[string]Info),
	}
	if c, ok := r.(io.Closer); ok {
		ix.closer = c
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		base := path.Base(f.Name)
		ext := strings.ToLower(path.Ext(base))
		if !ident.IsImageExtension(ext) {
			continue
		}
		stem := base[:len(base)-len(ext)]
		key := ident.Normalize(stem)
		if key == "" {
			continue
		}
		// Last entry wins on duplicate keys.
		ix.entries[key] = f
		ix.infos[key] = Info{Ext: ext, OriginalName: base}
	}

	return ix, nil
}

// Len returns the number of indexed images.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Keys returns every normalized identifier in the index.
func (ix *Index) Keys() []string {
	out := make([]string, 0, len(ix.entries))
	for k := range ix.entries {
		out = append(out, k)
	}
	return out
}

// Contains reports whether an entry exists for the identifier. A true
// result does not guarantee Get will succeed: the bytes may still fail
// validation.
func (ix *Index) Contains(identifier string) bool {
	_, ok := ix.entries[ident.Normalize(identifier)]
	return ok
}

// Info returns entry metadata without decompressing anything.
func (ix *Index) Info(identifier string) (Info, bool) {
	info, ok := ix.infos[ident.Normalize(identifier)]
	return info, ok
}

// Get decompresses and validates the entry for the identifier. It returns
// false when the identifier is unknown, the entry cannot be read, or its
// bytes do not pass image validation.
func (ix *Index) Get(identifier string) (*Entry, bool) {
	key := ident.Normalize(identifier)
	f, ok := ix.entries[key]
	if !ok {
		return nil, false
	}

	rc, err := f.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxEntrySize+1))
	if err != nil || int64(len(data)) > MaxEntrySize {
		return nil, false
	}

	if err := ValidateImage(data); err != nil {
		return nil, false
	}

	info := ix.infos[key]
	return &Entry{
		Identifier:   key,
		Ext:          info.Ext,
		OriginalName: info.OriginalName,
		Bytes:        data,
	}, true
}

// Close releases the underlying archive handle if the index owns one.
// Safe to call on an index built from in-memory bytes.
func (ix *Index) Close() error {
	if ix.closer != nil {
		return ix.closer.Close()
	}
	return nil
}
