package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/agrosoja/agrosoja/internal/db"
)

// LocalPrefix is the URL path under which Local serves images.
const LocalPrefix = "/media/"

// Local keeps images in the media table and serves them from LocalPrefix.
type Local struct {
	db *db.DB
}

// NewLocal creates a database-backed uploader.
func NewLocal(database *db.DB) *Local {
	return &Local{db: database}
}

// Upload stores the image and returns its site-relative URL.
func (l *Local) Upload(ctx context.Context, data []byte, _ string) (string, error) {
	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO media (id, data, mime) VALUES (?, ?, ?)`,
		id, data, http.DetectContentType(data),
	)
	if err != nil {
		return "", fmt.Errorf("%w: storing image: %v", ErrUpload, err)
	}
	return LocalPrefix + id, nil
}

// Delete removes a stored image.
func (l *Local) Delete(ctx context.Context, url string) error {
	id, ok := strings.CutPrefix(url, LocalPrefix)
	if !ok || id == "" {
		return nil
	}
	if _, err := l.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// Get returns a stored image and its MIME type, or nil data when absent.
func (l *Local) Get(ctx context.Context, id string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := l.db.QueryRowContext(ctx,
		`SELECT data, mime FROM media WHERE id = ?`, id,
	).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting image: %w", err)
	}
	return data, mime, nil
}
