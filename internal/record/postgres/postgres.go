// Package postgres implements the record store on PostgreSQL via pgx.
// Field values live in a jsonb column so tables with different field
// sets share one relation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cardforge/cardforge/internal/record"
)

// DBTX is the subset of pgxpool.Pool the store uses, so queries run the
// same against a pool or an open transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, rec *record.Record) error {
	const q = `
		INSERT INTO card_records (id, table_id, field_values, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(ctx, q, rec.ID, rec.TableID, rec.Values, string(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, rec *record.Record) error {
	const q = `
		UPDATE card_records
		SET field_values = $2, status = $3, updated_at = $4
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, q, rec.ID, rec.Values, string(rec.Status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update record %s: %w", rec.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	const q = `
		SELECT id, table_id, field_values, status, created_at, updated_at
		FROM card_records
		WHERE id = $1`
	rec, err := scanRecord(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, record.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select record %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context, tableID string, ids []uuid.UUID) ([]*record.Record, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(ids) > 0 {
		const q = `
			SELECT id, table_id, field_values, status, created_at, updated_at
			FROM card_records
			WHERE table_id = $1 AND id = ANY($2)`
		rows, err = s.db.Query(ctx, q, tableID, ids)
	} else {
		const q = `
			SELECT id, table_id, field_values, status, created_at, updated_at
			FROM card_records
			WHERE table_id = $1
			ORDER BY created_at, id`
		rows, err = s.db.Query(ctx, q, tableID)
	}
	if err != nil {
		return nil, fmt.Errorf("select records for %s: %w", tableID, err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*record.Record)
	var all []*record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		byID[rec.ID] = rec
		all = append(all, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	if len(ids) == 0 {
		return all, nil
	}

	// ANY() loses the caller's ordering; restore it.
	out := make([]*record.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*record.Record, error) {
	var (
		rec    record.Record
		status string
	)
	if err := row.Scan(&rec.ID, &rec.TableID, &rec.Values, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Status = record.Status(status)
	if rec.Values == nil {
		rec.Values = make(map[string]string)
	}
	return &rec, nil
}
