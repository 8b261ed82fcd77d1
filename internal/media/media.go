// Package media stores product images with a hosted media service or in the
// local database.
package media

import (
	"context"
	"errors"
)

// ErrUpload wraps failures reported by the media host.
var ErrUpload = errors.New("media upload failed")

// Uploader stores binary images and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
	// Delete removes the image behind url. URLs the uploader did not issue
	// are ignored.
	Delete(ctx context.Context, url string) error
}
