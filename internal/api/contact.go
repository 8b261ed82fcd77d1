package api

import (
	"log/slog"
	"net/http"

	"github.com/agrosoja/agrosoja/internal/catalog"
	"github.com/agrosoja/agrosoja/internal/model"
)

// ContactHandler handles the contact details endpoints.
type ContactHandler struct {
	Catalog *catalog.Service
}

// Get handles GET /api/contact.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Catalog.Contact(r.Context())
	if err != nil {
		catalogError(w, err, "get contact")
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Update handles PUT /api/contact.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ContactInfo
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Catalog.SaveContact(r.Context(), req)
	if err != nil {
		catalogError(w, err, "save contact")
		return
	}

	slog.Info("contact updated", "user", GetClaims(r.Context()).Email)
	jsonResponse(w, http.StatusOK, c)
}
