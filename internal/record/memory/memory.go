// Package memory implements the record store in process memory. It backs
// tests and single-node deployments that run without Postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardforge/cardforge/internal/record"
)

// Store keeps records in a map guarded by a mutex. Creation order is
// tracked separately so List without ids is deterministic.
type Store struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*record.Record
	order   []uuid.UUID
}

func New() *Store {
	return &Store{records: make(map[uuid.UUID]*record.Record)}
}

// clone guards callers against mutating shared state through returned
// pointers.
func clone(rec *record.Record) *record.Record {
	cp := *rec
	cp.Values = make(map[string]string, len(rec.Values))
	for k, v := range rec.Values {
		cp.Values[k] = v
	}
	return &cp
}

func (s *Store) Create(ctx context.Context, rec *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = clone(rec)
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *Store) Update(ctx context.Context, rec *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; !ok {
		return record.ErrNotFound
	}
	cp := clone(rec)
	cp.UpdatedAt = time.Now().UTC()
	s.records[rec.ID] = cp
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, record.ErrNotFound
	}
	return clone(rec), nil
}

func (s *Store) List(ctx context.Context, tableID string, ids []uuid.UUID) ([]*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(ids) > 0 {
		out := make([]*record.Record, 0, len(ids))
		for _, id := range ids {
			if rec, ok := s.records[id]; ok && rec.TableID == tableID {
				out = append(out, clone(rec))
			}
		}
		return out, nil
	}

	var out []*record.Record
	for _, id := range s.order {
		if rec, ok := s.records[id]; ok && rec.TableID == tableID {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}
