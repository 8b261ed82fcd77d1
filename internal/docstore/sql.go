package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/agrosoja/agrosoja/internal/clock"
	"github.com/agrosoja/agrosoja/internal/db"
)

// SQLStore keeps documents in the documents table as JSON.
type SQLStore struct {
	db    *db.DB
	clock clock.Clock
}

// NewSQLStore creates a SQL-backed store.
func NewSQLStore(database *db.DB, c clock.Clock) *SQLStore {
	return &SQLStore{db: database, clock: c}
}

// FetchAll returns every document in a collection in insertion order.
func (s *SQLStore) FetchAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields, created_at, updated_at FROM documents
		 WHERE collection = ? ORDER BY seq`, collection,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", collection, err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Get returns one document, or nil when it does not exist.
func (s *SQLStore) Get(ctx context.Context, collection, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fields, created_at, updated_at FROM documents
		 WHERE collection = ? AND id = ?`, collection, id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

// Create stores a new document under a generated id.
func (s *SQLStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data, err := json.Marshal(mergeFields(nil, fields))
	if err != nil {
		return "", fmt.Errorf("encoding %s document: %w", collection, err)
	}

	id := uuid.NewString()
	now := s.clock.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		collection, id, string(data), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating %s document: %w", collection, err)
	}
	return id, nil
}

// Update merges fields into an existing document.
func (s *SQLStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}

	current := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		return fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	data, err := json.Marshal(mergeFields(current, fields))
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET fields = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(data), s.clock.Now(), collection, id,
	)
	if err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

// Delete removes a document.
func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id,
	)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// GetSingleton returns the document stored under key.
func (s *SQLStore) GetSingleton(ctx context.Context, collection, key string) (*Record, error) {
	return s.Get(ctx, collection, key)
}

// SetSingleton replaces the document stored under key.
func (s *SQLStore) SetSingleton(ctx context.Context, collection, key string, fields map[string]any) error {
	data, err := json.Marshal(mergeFields(nil, fields))
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, key, err)
	}

	now := s.clock.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
		collection, key, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("setting %s/%s: %w", collection, key, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var rec Record
	var raw string
	if err := sc.Scan(&rec.ID, &raw, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Fields = map[string]any{}
	if err := json.Unmarshal([]byte(raw), &rec.Fields); err != nil {
		return nil, fmt.Errorf("decoding fields of %s: %w", rec.ID, err)
	}
	return &rec, nil
}
