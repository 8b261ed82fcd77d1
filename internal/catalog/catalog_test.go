package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrosoja/agrosoja/internal/clock"
	"github.com/agrosoja/agrosoja/internal/db"
	"github.com/agrosoja/agrosoja/internal/docstore"
	"github.com/agrosoja/agrosoja/internal/imaging"
	"github.com/agrosoja/agrosoja/internal/model"
)

type fakeUploader struct {
	uploaded []string
	deleted  []string
	failOn   error
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, filename string) (string, error) {
	if f.failOn != nil {
		return "", f.failOn
	}
	url := fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/v1/produtos/%d.jpg", len(f.uploaded)+1)
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeUploader) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{34, 139, 34, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestService(t *testing.T) (*Service, docstore.Store, *fakeUploader, *clock.Mock) {
	t.Helper()
	c := clock.NewMock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	docs := docstore.NewSQLStore(db.NewTestDB(t), c)
	up := &fakeUploader{}
	return NewService(docs, up, imaging.Options{}), docs, up, c
}

func TestSaveProductRequiresImageOnCreate(t *testing.T) {
	s, _, _, _ := newTestService(t)

	_, err := s.SaveProduct(context.Background(), ProductInput{
		Title:    "Soja em grão",
		Category: model.CategoryGrains,
	})
	assert.ErrorIs(t, err, ErrImageRequired)
}

func TestSaveProductCreateAndEdit(t *testing.T) {
	s, _, up, c := newTestService(t)
	ctx := context.Background()

	p, err := s.SaveProduct(ctx, ProductInput{
		Title:       "  Soja em grão  ",
		Description: "Safra 2024",
		Category:    model.CategoryGrains,
		Image:       testPNG(t),
		ImageName:   "soja.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Soja em grão", p.Title)
	assert.Equal(t, model.CategoryGrains, p.Category)
	require.NotNil(t, p.ImageURL)
	assert.Equal(t, up.uploaded[0], *p.ImageURL)

	c.Advance(time.Hour)

	// Editing without an image keeps the previous one.
	edited, err := s.SaveProduct(ctx, ProductInput{
		ID:       p.ID,
		Title:    "Soja tipo exportação",
		Category: model.CategoryPlanted,
	})
	require.NoError(t, err)
	assert.Equal(t, "Soja tipo exportação", edited.Title)
	assert.Equal(t, model.CategoryPlanted, edited.Category)
	assert.Equal(t, p.Image(), edited.Image())
	assert.True(t, edited.UpdatedAt.After(edited.CreatedAt))
	assert.Empty(t, up.deleted)

	// A new image replaces and deletes the old one.
	replaced, err := s.SaveProduct(ctx, ProductInput{
		ID:       p.ID,
		Title:    "Soja tipo exportação",
		Category: model.CategoryPlanted,
		Image:    testPNG(t),
	})
	require.NoError(t, err)
	assert.Equal(t, up.uploaded[1], replaced.Image())
	assert.Equal(t, []string{up.uploaded[0]}, up.deleted)
}

func TestSaveProductValidation(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   ProductInput
	}{
		{"empty title", ProductInput{Title: "  ", Category: model.CategoryGrains}},
		{"unknown category", ProductInput{Title: "Milho", Category: "milho"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateProduct(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := s.SaveProduct(ctx, ProductInput{
		Title:    "Soja",
		Category: model.CategoryGrains,
		Image:    []byte("not an image"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.SaveProduct(ctx, ProductInput{ID: "missing", Title: "Soja", Category: model.CategoryGrains})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProductWithoutImage(t *testing.T) {
	s, _, up, _ := newTestService(t)

	p, err := s.CreateProduct(context.Background(), ProductInput{Title: "Lavoura Sul", Category: model.CategoryPlanted})
	require.NoError(t, err)
	assert.Nil(t, p.ImageURL)
	assert.Empty(t, up.uploaded)
}

func TestUploadFailureLeavesStoreUnchanged(t *testing.T) {
	s, _, up, _ := newTestService(t)
	ctx := context.Background()
	up.failOn = errors.New("boom")

	_, err := s.SaveProduct(ctx, ProductInput{Title: "Soja", Category: model.CategoryGrains, Image: testPNG(t)})
	require.Error(t, err)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

// failingWrites passes reads through and fails every Create and Update.
type failingWrites struct {
	docstore.Store
}

var errStoreDown = errors.New("store down")

func (failingWrites) Create(context.Context, string, map[string]any) (string, error) {
	return "", errStoreDown
}

func (failingWrites) Update(context.Context, string, string, map[string]any) error {
	return errStoreDown
}

func TestStoreFailureDeletesUploadedImage(t *testing.T) {
	s, docs, up, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProduct(ctx, ProductInput{Title: "Milho", Category: model.CategoryGrains})
	require.NoError(t, err)

	broken := NewService(failingWrites{docs}, up, imaging.Options{})

	_, err = broken.CreateProduct(ctx, ProductInput{Title: "Soja", Category: model.CategoryGrains, Image: testPNG(t), ImageName: "soja.png"})
	assert.ErrorIs(t, err, errStoreDown)

	_, err = broken.SaveProduct(ctx, ProductInput{ID: p.ID, Title: "Milho", Category: model.CategoryGrains, Image: testPNG(t), ImageName: "milho.png"})
	assert.ErrorIs(t, err, errStoreDown)

	_, err = broken.SetProductImage(ctx, p.ID, testPNG(t), "milho.png")
	assert.ErrorIs(t, err, errStoreDown)

	require.Len(t, up.uploaded, 3)
	assert.Equal(t, up.uploaded, up.deleted)
}

func TestListProductsSkipsInvalidDocuments(t *testing.T) {
	s, docs, _, _ := newTestService(t)
	ctx := context.Background()

	for _, fields := range []map[string]any{
		{"titulo": "Soja", "categoria": "graos", "imagemUrl": "https://example.com/a.jpg"},
		{"titulo": "", "categoria": "graos"},
		{"titulo": "Milho", "categoria": "milho"},
		{"titulo": 42, "categoria": "plantada"},
		{"titulo": "Lavoura", "categoria": "plantada", "descricao": 7},
	} {
		_, err := docs.Create(ctx, CollectionProducts, fields)
		require.NoError(t, err)
	}

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Soja", products[0].Title)
	assert.Equal(t, "https://example.com/a.jpg", products[0].Image())
	assert.Equal(t, "Lavoura", products[1].Title)
	assert.Equal(t, "", products[1].Description)
	assert.Nil(t, products[1].ImageURL)
}

func TestSetProductImage(t *testing.T) {
	s, _, up, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProduct(ctx, ProductInput{Title: "Soja", Category: model.CategoryGrains})
	require.NoError(t, err)

	_, err = s.SetProductImage(ctx, p.ID, nil, "")
	assert.ErrorIs(t, err, ErrImageRequired)

	updated, err := s.SetProductImage(ctx, p.ID, testPNG(t), "soja.png")
	require.NoError(t, err)
	assert.Equal(t, up.uploaded[0], updated.Image())
	assert.Equal(t, "Soja", updated.Title)

	_, err = s.SetProductImage(ctx, "missing", testPNG(t), "x.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	s, _, up, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.SaveProduct(ctx, ProductInput{Title: "Soja", Category: model.CategoryGrains, Image: testPNG(t)})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []string{p.Image()}, up.deleted)

	_, err = s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.DeleteProduct(ctx, p.ID))
}

func TestContactDefaultsAndSave(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx := context.Background()

	c, err := s.Contact(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultContact, c)

	saved, err := s.SaveContact(ctx, model.ContactInfo{Phone: " (65) 3333-4444 ", Email: "vendas@agro.com"})
	require.NoError(t, err)
	assert.Equal(t, "(65) 3333-4444", saved.Phone)
	assert.Equal(t, model.DefaultContact.Address, saved.Address)

	c, err = s.Contact(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, c)

	_, err = s.SaveContact(ctx, model.ContactInfo{Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMessages(t *testing.T) {
	s, _, _, c := newTestService(t)
	ctx := context.Background()

	_, err := s.SubmitMessage(ctx, MessageInput{Name: "", Body: "Olá"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.SubmitMessage(ctx, MessageInput{Name: "João", Body: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	first, err := s.SubmitMessage(ctx, MessageInput{Name: "João", Phone: "65 9999", Body: "Quero cotação"})
	require.NoError(t, err)
	assert.Equal(t, "João", first.Name)
	c.Advance(time.Minute)
	second, err := s.SubmitMessage(ctx, MessageInput{Name: "Maria", Body: "Tem milho?"})
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, second.ID, msgs[0].ID)
	assert.Equal(t, first.ID, msgs[1].ID)

	require.NoError(t, s.DeleteMessage(ctx, first.ID))
	msgs, err = s.ListMessages(ctx)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
