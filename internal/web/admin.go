package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrosoja/agrosoja/internal/catalog"
	"github.com/agrosoja/agrosoja/internal/model"
)

// maxImageSize bounds product photo uploads.
const maxImageSize = 5 << 20

// flashes are the success notices selected by the ok query parameter after a
// redirect.
var flashes = map[string]string{
	"produto":  "Produto salvo.",
	"excluido": "Produto excluído.",
	"contato":  "Contato atualizado.",
	"mensagem": "Mensagem excluída.",
	"senha":    "Senha alterada.",
	"usuario":  "Administrador criado.",
	"removido": "Administrador removido.",
}

type productForm struct {
	ID          string
	Title       string
	Description string
	Category    model.Category
	ImageURL    string
}

type adminData struct {
	PageData
	Products   []model.Product
	Messages   []model.Message
	Contact    model.ContactInfo
	Categories []model.Category
	Form       productForm
}

// Editing reports whether the product form edits an existing product.
func (d *adminData) Editing() bool {
	return d.Form.ID != ""
}

// adminPanel loads everything the admin panel shows. Load errors are logged
// and reported in the page.
func (s *Server) adminPanel(r *http.Request) *adminData {
	data := &adminData{
		PageData: PageData{
			Title:   "Painel administrativo",
			User:    GetWebClaims(r.Context()),
			Success: flashes[r.URL.Query().Get("ok")],
		},
		Categories: model.Categories,
		Form:       productForm{Category: model.CategoryGrains},
	}

	var err error
	if data.Products, err = s.Catalog.ListProducts(r.Context()); err != nil {
		slog.Error("failed to list products", "error", err)
		data.Error = "Não foi possível carregar os produtos."
	}
	if data.Messages, err = s.Catalog.ListMessages(r.Context()); err != nil {
		slog.Error("failed to list messages", "error", err)
		data.Error = "Não foi possível carregar as mensagens."
	}
	if data.Contact, err = s.Catalog.Contact(r.Context()); err != nil {
		slog.Error("failed to get contact", "error", err)
	}
	return data
}

// AdminPage handles GET /admin. Without a session it shows the login form.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	claims := sessionFromCookie(r, s.Auth)
	if claims == nil {
		s.Templates.Render(w, "login.html", &PageData{Title: "Acesso restrito"})
		return
	}
	r = r.WithContext(withSession(r.Context(), claims))

	data := s.adminPanel(r)
	if id := r.URL.Query().Get("editar"); id != "" {
		p, err := s.Catalog.GetProduct(r.Context(), id)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			data.Error = "Produto não encontrado."
		case err != nil:
			slog.Error("failed to get product", "error", err)
			data.Error = "Não foi possível carregar o produto."
		default:
			data.Form = productForm{
				ID:          p.ID,
				Title:       p.Title,
				Description: p.Description,
				Category:    p.Category,
				ImageURL:    p.Image(),
			}
		}
	}
	s.Templates.Render(w, "admin.html", data)
}

// ProductCreateSubmit handles POST /admin/products.
func (s *Server) ProductCreateSubmit(w http.ResponseWriter, r *http.Request) {
	s.saveProduct(w, r, "")
}

// ProductUpdateSubmit handles POST /admin/products/{id}.
func (s *Server) ProductUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	s.saveProduct(w, r, chi.URLParam(r, "id"))
}

func (s *Server) saveProduct(w http.ResponseWriter, r *http.Request, id string) {
	claims := GetWebClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		s.productError(w, r, productForm{ID: id}, "Arquivo muito grande ou formulário inválido.")
		return
	}

	in := catalog.ProductInput{
		ID:          id,
		Title:       r.FormValue("titulo"),
		Description: r.FormValue("descricao"),
		Category:    model.Category(r.FormValue("categoria")),
	}
	form := productForm{ID: id, Title: in.Title, Description: in.Description, Category: in.Category}

	file, header, err := r.FormFile("imagem")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		s.productError(w, r, form, "Não foi possível ler a imagem.")
		return
	default:
		defer file.Close()
		if in.Image, err = io.ReadAll(file); err != nil {
			s.productError(w, r, form, "Não foi possível ler a imagem.")
			return
		}
		in.ImageName = header.Filename
	}

	p, err := s.Catalog.SaveProduct(r.Context(), in)
	switch {
	case errors.Is(err, catalog.ErrImageRequired):
		s.productError(w, r, form, "Selecione uma imagem para o novo produto.")
		return
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
		return
	case errors.Is(err, catalog.ErrInvalidInput):
		slog.Warn("product rejected", "user", claims.Email, "error", err)
		s.productError(w, r, form, "Verifique título, categoria e imagem (JPEG ou PNG).")
		return
	case err != nil:
		slog.Error("failed to save product", "error", err)
		s.productError(w, r, form, "Erro ao salvar o produto. Tente novamente.")
		return
	}

	slog.Info("product saved", "user", claims.Email, "product", p.Title, "id", p.ID)
	http.Redirect(w, r, "/admin?ok=produto", http.StatusSeeOther)
}

func (s *Server) productError(w http.ResponseWriter, r *http.Request, form productForm, msg string) {
	data := s.adminPanel(r)
	if form.Category == "" {
		form.Category = model.CategoryGrains
	}
	if form.ID != "" {
		if p, err := s.Catalog.GetProduct(r.Context(), form.ID); err == nil {
			form.ImageURL = p.Image()
		}
	}
	data.Form = form
	data.Error = msg
	s.Templates.RenderStatus(w, http.StatusBadRequest, "admin.html", data)
}

// ProductDeleteSubmit handles POST /admin/products/{id}/delete.
func (s *Server) ProductDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.Catalog.DeleteProduct(r.Context(), id); err != nil {
		slog.Error("failed to delete product", "error", err)
		http.Error(w, "failed to delete product", http.StatusInternalServerError)
		return
	}

	slog.Info("product deleted", "user", claims.Email, "id", id)
	http.Redirect(w, r, "/admin?ok=excluido", http.StatusSeeOther)
}

// ContactSubmit handles POST /admin/contact.
func (s *Server) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	_, err := s.Catalog.SaveContact(r.Context(), model.ContactInfo{
		Phone:   r.FormValue("telefone"),
		Email:   r.FormValue("email"),
		Address: r.FormValue("endereco"),
	})
	if err != nil {
		data := s.adminPanel(r)
		if errors.Is(err, catalog.ErrInvalidInput) {
			data.Error = "E-mail de contato inválido."
		} else {
			slog.Error("failed to save contact", "error", err)
			data.Error = "Erro ao salvar o contato."
		}
		s.Templates.RenderStatus(w, http.StatusBadRequest, "admin.html", data)
		return
	}

	slog.Info("contact updated", "user", claims.Email)
	http.Redirect(w, r, "/admin?ok=contato#contato", http.StatusSeeOther)
}

// MessageDeleteSubmit handles POST /admin/messages/{id}/delete.
func (s *Server) MessageDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.Catalog.DeleteMessage(r.Context(), id); err != nil {
		slog.Error("failed to delete message", "error", err)
		http.Error(w, "failed to delete message", http.StatusInternalServerError)
		return
	}

	slog.Info("message deleted", "user", claims.Email, "id", id)
	http.Redirect(w, r, "/admin?ok=mensagem#mensagens", http.StatusSeeOther)
}
