package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MediaGet handles GET /media/{id}, serving images kept in the local media
// table.
func (s *Server) MediaGet(w http.ResponseWriter, r *http.Request) {
	data, mime, err := s.Media.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("failed to get image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
