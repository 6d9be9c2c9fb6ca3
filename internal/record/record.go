// Package record holds the card-record domain model and the store
// interface its persistence backends implement.
package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardforge/cardforge/internal/schema"
)

// ErrNotFound is returned when no record exists under the requested id.
var ErrNotFound = errors.New("record not found")

// Status tracks a card through its production workflow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusPool     Status = "pool"
	StatusApproved Status = "approved"
	StatusDownload Status = "download"
	StatusReprint  Status = "reprint"
)

// Valid reports whether s is one of the known workflow statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusPool, StatusApproved, StatusDownload, StatusReprint:
		return true
	}
	return false
}

// Record is one card: a bag of field values keyed by field name.
// Image fields hold the string form of an ImageState.
type Record struct {
	ID        uuid.UUID
	TableID   string
	Values    map[string]string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds an empty pending record for a table.
func New(tableID string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.New(),
		TableID:   tableID,
		Values:    make(map[string]string),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Image returns the state of an image field on the record.
func (r *Record) Image(field string) ImageState {
	return ParseImageState(r.Values[field])
}

// SetImage stores an image state on the record.
func (r *Record) SetImage(field string, state ImageState) {
	r.Values[field] = state.String()
}

// NormalizeValues drops values for fields the table does not define and
// fills missing fields with the empty string, so every stored record
// carries exactly the table's columns.
func (r *Record) NormalizeValues(table *schema.Table) {
	normalized := make(map[string]string, len(table.Fields))
	for _, f := range table.Fields {
		normalized[f.Name] = r.Values[f.Name]
	}
	r.Values = normalized
}

// Store is the persistence backend for card records.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error

	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Record, error)

	// List returns a table's records. When ids is non-empty only those
	// records are returned, in the order the ids were given; ids with no
	// record are skipped. With no ids, all of the table's records are
	// returned in creation order.
	List(ctx context.Context, tableID string, ids []uuid.UUID) ([]*Record, error)
}

// pendingPrefix marks an image value that names an unresolved archive
// reference rather than a stored object key.
const pendingPrefix = "PENDING:"

// ImageState is the tri-state value of an image field: empty, pending
// on an archive reference, or resolved to a storage key.
type ImageState struct {
	// Ref is the unresolved reference for a pending state.
	Ref string
	// Key is the storage key for a resolved state.
	Key string
}

// EmptyImage is the state of an image field with no value.
func EmptyImage() ImageState { return ImageState{} }

// PendingImage marks a field waiting for an archive entry named ref.
func PendingImage(ref string) ImageState { return ImageState{Ref: ref} }

// ResolvedImage marks a field backed by a stored object.
func ResolvedImage(key string) ImageState { return ImageState{Key: key} }

// IsEmpty reports whether the field has no value at all.
func (s ImageState) IsEmpty() bool { return s.Ref == "" && s.Key == "" }

// IsPending reports whether the field is waiting on an archive reference.
func (s ImageState) IsPending() bool { return s.Ref != "" }

// IsResolved reports whether the field points at a stored object.
func (s ImageState) IsResolved() bool { return s.Key != "" }

// String renders the stored form: "", "PENDING:<ref>" or the key.
func (s ImageState) String() string {
	if s.Ref != "" {
		return pendingPrefix + s.Ref
	}
	return s.Key
}

// ParseImageState reads the stored form back into a state.
func ParseImageState(v string) ImageState {
	v = strings.TrimSpace(v)
	if v == "" {
		return ImageState{}
	}
	if ref, ok := strings.CutPrefix(v, pendingPrefix); ok {
		return ImageState{Ref: ref}
	}
	return ImageState{Key: v}
}

// ParseID parses a record id from its string form.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid record id %q: %w", s, err)
	}
	return id, nil
}
