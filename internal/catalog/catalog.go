// Package catalog maps stored documents to products, contact details and
// visitor messages, and implements the operations behind the site's pages.
package catalog

import (
	"errors"

	"github.com/agrosoja/agrosoja/internal/docstore"
	"github.com/agrosoja/agrosoja/internal/imaging"
	"github.com/agrosoja/agrosoja/internal/media"
)

// Document collections and singleton keys.
const (
	CollectionProducts = "produtos"
	CollectionSettings = "configuracoes"
	CollectionMessages = "mensagens"

	ContactKey = "contato"
)

// Errors returned by Service.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrImageRequired = errors.New("image is required")
)

// Service implements catalog operations on a document store and a media
// uploader.
type Service struct {
	docs     docstore.Store
	uploader media.Uploader
	imaging  imaging.Options
}

// NewService creates a catalog service.
func NewService(docs docstore.Store, uploader media.Uploader, opts imaging.Options) *Service {
	return &Service{docs: docs, uploader: uploader, imaging: opts}
}
