package catalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/agrosoja/agrosoja/internal/imaging"
	"github.com/agrosoja/agrosoja/internal/model"
)

// ProductInput carries the editable product fields. An empty ID creates a
// new product. Image is the raw upload and may be empty.
type ProductInput struct {
	ID          string
	Title       string
	Description string
	Category    model.Category
	Image       []byte
	ImageName   string
}

func (in *ProductInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, MaxTitleLength)
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, MaxDescriptionLength)
	}
	if !in.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	return nil
}

func (in ProductInput) fields() map[string]any {
	return map[string]any{
		fieldTitle:       in.Title,
		fieldDescription: in.Description,
		fieldCategory:    string(in.Category),
	}
}

// ListProducts returns every valid product in store order. Documents that
// fail validation are skipped and logged.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	recs, err := s.docs.FetchAll(ctx, CollectionProducts)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products := make([]model.Product, 0, len(recs))
	for _, rec := range recs {
		p, err := decodeProduct(rec)
		if err != nil {
			slog.Warn("skipping invalid product document", "id", rec.ID, "error", err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct returns one product. Missing and invalid documents both yield
// ErrNotFound.
func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	rec, err := s.docs.Get(ctx, CollectionProducts, id)
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	p, err := decodeProduct(*rec)
	if err != nil {
		slog.Warn("invalid product document", "id", id, "error", err)
		return nil, ErrNotFound
	}
	return &p, nil
}

// SaveProduct creates or updates a product from the admin form. New products
// need an image. On edit an empty image keeps the previous one.
func (s *Service) SaveProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if in.ID == "" && len(in.Image) == 0 {
		return nil, ErrImageRequired
	}
	if in.ID == "" {
		return s.CreateProduct(ctx, in)
	}
	return s.updateProduct(ctx, in)
}

// CreateProduct stores a new product. The image is optional.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	fields := in.fields()
	fields[fieldImageURL] = nil
	if len(in.Image) > 0 {
		url, err := s.upload(ctx, in.Image, in.ImageName)
		if err != nil {
			return nil, err
		}
		fields[fieldImageURL] = url
	}

	id, err := s.docs.Create(ctx, CollectionProducts, fields)
	if err != nil {
		if url, ok := fields[fieldImageURL].(string); ok {
			s.deleteImage(ctx, url)
		}
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *Service) updateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	existing, err := s.GetProduct(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	fields := in.fields()
	if len(in.Image) > 0 {
		url, err := s.upload(ctx, in.Image, in.ImageName)
		if err != nil {
			return nil, err
		}
		fields[fieldImageURL] = url
	}

	if err := s.docs.Update(ctx, CollectionProducts, in.ID, fields); err != nil {
		if url, ok := fields[fieldImageURL].(string); ok {
			s.deleteImage(ctx, url)
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}
	if len(in.Image) > 0 && existing.ImageURL != nil {
		s.deleteImage(ctx, *existing.ImageURL)
	}
	return s.GetProduct(ctx, in.ID)
}

// SetProductImage uploads a new image for an existing product.
func (s *Service) SetProductImage(ctx context.Context, id string, data []byte, filename string) (*model.Product, error) {
	if len(data) == 0 {
		return nil, ErrImageRequired
	}
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, CollectionProducts, id, map[string]any{fieldImageURL: url}); err != nil {
		s.deleteImage(ctx, url)
		return nil, fmt.Errorf("setting product image: %w", err)
	}
	if existing.ImageURL != nil {
		s.deleteImage(ctx, *existing.ImageURL)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product and, on a best-effort basis, its image.
// Deleting a missing product is not an error.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	rec, err := s.docs.Get(ctx, CollectionProducts, id)
	if err != nil {
		return fmt.Errorf("getting product: %w", err)
	}
	if rec != nil {
		if url := str(rec.Fields, fieldImageURL); url != "" {
			s.deleteImage(ctx, url)
		}
	}
	if err := s.docs.Delete(ctx, CollectionProducts, id); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

func (s *Service) upload(ctx context.Context, data []byte, filename string) (string, error) {
	res, err := imaging.Process(bytes.NewReader(data), s.imaging)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	url, err := s.uploader.Upload(ctx, res.Data, filename)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	return url, nil
}

func (s *Service) deleteImage(ctx context.Context, url string) {
	if err := s.uploader.Delete(ctx, url); err != nil {
		slog.Warn("failed to delete product image", "url", url, "error", err)
	}
}
