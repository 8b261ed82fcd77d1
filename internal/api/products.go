package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrosoja/agrosoja/internal/catalog"
	"github.com/agrosoja/agrosoja/internal/gallery"
	"github.com/agrosoja/agrosoja/internal/model"
)

// maxImageSize bounds image uploads.
const maxImageSize = 5 << 20

// ProductsHandler handles product endpoints.
type ProductsHandler struct {
	Catalog  *catalog.Service
	PageSize gallery.PageSizePolicy
}

type productRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (req productRequest) input(id string) catalog.ProductInput {
	return catalog.ProductInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Category:    model.Category(req.Category),
	}
}

// List handles GET /api/products. It returns one gallery page selected by the
// filter, page, vw and item query parameters.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.ListProducts(r.Context())
	if err != nil {
		catalogError(w, err, "list products")
		return
	}

	engine := gallery.Restore(h.PageSize, products, gallery.ParseQuery(r.URL.Query()))
	jsonResponse(w, http.StatusOK, engine.Page())
}

// Get handles GET /api/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		catalogError(w, err, "get product")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Catalog.CreateProduct(r.Context(), req.input(""))
	if err != nil {
		catalogError(w, err, "create product")
		return
	}

	slog.Info("product created", "user", GetClaims(r.Context()).Email, "product", p.Title)
	jsonResponse(w, http.StatusCreated, p)
}

// Update handles PUT /api/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Catalog.SaveProduct(r.Context(), req.input(chi.URLParam(r, "id")))
	if err != nil {
		catalogError(w, err, "update product")
		return
	}

	slog.Info("product updated", "user", GetClaims(r.Context()).Email, "product", p.Title)
	jsonResponse(w, http.StatusOK, p)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Catalog.DeleteProduct(r.Context(), id); err != nil {
		catalogError(w, err, "delete product")
		return
	}

	slog.Info("product deleted", "user", GetClaims(r.Context()).Email, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// UploadImage handles PUT /api/products/{id}/image.
func (h *ProductsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read image")
		return
	}

	p, err := h.Catalog.SetProductImage(r.Context(), chi.URLParam(r, "id"), data, header.Filename)
	if err != nil {
		catalogError(w, err, "save image")
		return
	}

	slog.Info("product image uploaded", "user", GetClaims(r.Context()).Email, "product", p.Title)
	jsonResponse(w, http.StatusOK, p)
}
