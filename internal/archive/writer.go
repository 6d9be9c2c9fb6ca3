package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// Writer builds an export archive. It is a thin wrapper over zip.Writer
// that tracks how many entries were added, which export uses to decide
// whether an archive is worth emitting at all.
type Writer struct {
	zw    *zip.Writer
	count int
}

// NewWriter creates an archive writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w)}
}

// Add appends one file to the archive.
func (w *Writer) Add(name string, data []byte) error {
	f, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	w.count++
	return nil
}

// Count returns the number of entries added so far.
func (w *Writer) Count() int {
	return w.count
}

// Close finalizes the archive. The archive is unreadable until Close
// returns nil.
func (w *Writer) Close() error {
	return w.zw.Close()
}
