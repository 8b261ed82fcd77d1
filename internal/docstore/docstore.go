// Package docstore is a small document store: named collections of schemaless
// records addressed by opaque string ids, plus singleton records addressed by
// well-known keys.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Update when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Record is one stored document.
type Record struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the document store contract used by the catalog.
//
// FetchAll returns records in insertion order. Get and GetSingleton return
// nil, nil for absent documents. Update merges fields into an existing
// document. Delete of a missing document is not an error. SetSingleton
// replaces the whole document, creating it when needed.
type Store interface {
	FetchAll(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection, id string) (*Record, error)
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	GetSingleton(ctx context.Context, collection, key string) (*Record, error)
	SetSingleton(ctx context.Context, collection, key string, fields map[string]any) error
}

func mergeFields(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
