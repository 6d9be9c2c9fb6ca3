// Package storage defines the blob store the card pipelines write images
// and generated exports into. Keys are forward-slash paths like
// "cards/<table>/<name>.jpg"; the backend decides how they map to bytes.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no object exists under the requested key.
var ErrNotFound = errors.New("storage: object not found")

// Store is a flat key-addressed blob store.
type Store interface {
	// Put writes the object, replacing any existing object under the key.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the full object bytes, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
}
