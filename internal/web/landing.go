package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/agrosoja/agrosoja/internal/catalog"
	"github.com/agrosoja/agrosoja/internal/gallery"
	"github.com/agrosoja/agrosoja/internal/model"
)

type landingData struct {
	PageData
	Gallery    gallery.Page
	Query      gallery.Query
	Filters    []gallery.Filter
	Breakpoint int
	Contact    model.ContactInfo
	Sent       bool
	Form       catalog.MessageInput
	FormError  string
}

// FilterURL links to the first page of filter f.
func (d *landingData) FilterURL(f gallery.Filter) string {
	return galleryURL(gallery.Query{Filter: f})
}

// PageURL links to page i of the current filter.
func (d *landingData) PageURL(i int) string {
	return galleryURL(gallery.Query{Filter: d.Query.Filter, Page: i})
}

// ItemURL opens the detail overlay for a product on the current page.
func (d *landingData) ItemURL(id string) string {
	q := d.Query
	q.Item = id
	return galleryURL(q)
}

// CloseURL dismisses the detail overlay.
func (d *landingData) CloseURL() string {
	q := d.Query
	q.Item = ""
	return galleryURL(q)
}

func galleryURL(q gallery.Query) string {
	if enc := q.Values().Encode(); enc != "" {
		return "/?" + enc + "#produtos"
	}
	return "/#produtos"
}

// Landing handles GET /.
func (s *Server) Landing(w http.ResponseWriter, r *http.Request) {
	data := s.landing(r)
	data.Sent = r.URL.Query().Get("enviado") == "1"
	s.Templates.Render(w, "landing.html", data)
}

// landing loads the catalog and replays the request's view state on a fresh
// engine.
func (s *Server) landing(r *http.Request) *landingData {
	data := &landingData{
		PageData:   PageData{Title: "AgroSoja"},
		Filters:    gallery.Filters,
		Breakpoint: s.PageSize.Breakpoint,
	}

	products, err := s.Catalog.ListProducts(r.Context())
	if err != nil {
		slog.Error("failed to list products", "error", err)
		data.Error = "Não foi possível carregar os produtos. Tente novamente mais tarde."
	}

	q := gallery.ParseQuery(r.URL.Query())
	q.Width = viewportWidth(r)
	engine := gallery.Restore(s.PageSize, products, q)

	data.Gallery = engine.Page()
	data.Query = gallery.Query{Filter: engine.Filter(), Page: engine.PageIndex()}
	if data.Gallery.Selected != nil {
		data.Query.Item = data.Gallery.Selected.ID
	}

	contact, err := s.Catalog.Contact(r.Context())
	if err != nil {
		slog.Error("failed to get contact", "error", err)
	}
	data.Contact = contact
	return data
}

// MessageSubmit handles POST /contato.
func (s *Server) MessageSubmit(w http.ResponseWriter, r *http.Request) {
	in := catalog.MessageInput{
		Name:  r.FormValue("nome"),
		Phone: r.FormValue("telefone"),
		Body:  r.FormValue("mensagem"),
	}

	m, err := s.Catalog.SubmitMessage(r.Context(), in)
	if err != nil {
		data := s.landing(r)
		data.Form = in
		status := http.StatusBadRequest
		if errors.Is(err, catalog.ErrInvalidInput) {
			data.FormError = "Preencha nome e mensagem."
		} else {
			slog.Error("failed to store message", "error", err)
			data.FormError = "Não foi possível enviar sua mensagem. Tente novamente."
			status = http.StatusInternalServerError
		}
		s.Templates.RenderStatus(w, status, "landing.html", data)
		return
	}

	slog.Info("message received", "id", m.ID, "name", m.Name)
	http.Redirect(w, r, "/?enviado=1#contato", http.StatusSeeOther)
}
