// Package pipeline implements the bulk import, export and photo
// reupload operations over card tables.
package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cardforge/cardforge/internal/record"
	"github.com/cardforge/cardforge/internal/storage"
)

// maxReportedErrors caps the row errors carried back to the operator.
// The true count is always reported alongside.
const maxReportedErrors = 10

// Pipeline wires the import, export and reupload operations to their
// backends.
type Pipeline struct {
	store   storage.Store
	records record.Store
	logger  *slog.Logger
	metrics *Metrics
}

func New(store storage.Store, records record.Store, logger *slog.Logger, metrics *Metrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: store, records: records, logger: logger, metrics: metrics}
}

// RowError records a failure building or persisting one data row.
// Row numbers are 1-based file positions, so the first data row is 2.
type RowError struct {
	Row int    `json:"row"`
	Err string `json:"error"`
}

// Conflict is one duplicate image identifier: two rows of the same
// column normalizing to the same value.
type Conflict struct {
	Column     string `json:"column"`
	Identifier string `json:"identifier"`
	FirstRow   int    `json:"first_row"`
	SecondRow  int    `json:"second_row"`
}

// DuplicateError aborts an import before any record is written.
// Ambiguous photo matching must never resolve silently.
type DuplicateError struct {
	Conflicts []Conflict
}

func (e *DuplicateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "duplicate image identifiers in %d place(s):", len(e.Conflicts))
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, " [%s: %q rows %d and %d]", c.Column, c.Identifier, c.FirstRow, c.SecondRow)
	}
	return b.String()
}

// ImportResult summarizes one import invocation.
type ImportResult struct {
	RecordsCreated int        `json:"records_created"`
	PhotosMatched  int        `json:"photos_matched"`
	MatchedFields  []string   `json:"matched_fields"`
	RowErrors      []RowError `json:"row_errors,omitempty"`
	ErrorCount     int        `json:"error_count"`
}

// ReuploadResult summarizes one reupload invocation.
type ReuploadResult struct {
	ImagesMatched int `json:"images_matched"`
	CardsUpdated  int `json:"cards_updated"`
	InvalidImages int `json:"invalid_images"`
}

// Artifact is a generated download: a spreadsheet or a zip of images.
type Artifact struct {
	Name string
	Data []byte
}
