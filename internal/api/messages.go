package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrosoja/agrosoja/internal/catalog"
)

// MessagesHandler handles visitor message endpoints.
type MessagesHandler struct {
	Catalog *catalog.Service
}

type messageRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Create handles POST /api/messages.
func (h *MessagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Catalog.SubmitMessage(r.Context(), catalog.MessageInput{
		Name:  req.Name,
		Phone: req.Phone,
		Body:  req.Message,
	})
	if err != nil {
		catalogError(w, err, "store message")
		return
	}

	slog.Info("message received", "id", m.ID, "name", m.Name)
	jsonResponse(w, http.StatusCreated, m)
}

// List handles GET /api/messages.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Catalog.ListMessages(r.Context())
	if err != nil {
		catalogError(w, err, "list messages")
		return
	}
	jsonResponse(w, http.StatusOK, msgs)
}

// Delete handles DELETE /api/messages/{id}.
func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteMessage(r.Context(), chi.URLParam(r, "id")); err != nil {
		catalogError(w, err, "delete message")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "message deleted"})
}
