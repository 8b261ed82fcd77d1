package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrosoja/agrosoja/internal/auth"
	"github.com/agrosoja/agrosoja/internal/catalog"
	"github.com/agrosoja/agrosoja/internal/db"
	"github.com/agrosoja/agrosoja/internal/gallery"
	"github.com/agrosoja/agrosoja/internal/media"
	webembed "github.com/agrosoja/agrosoja/web"
)

// Deps are the services the pages are built on.
type Deps struct {
	DB       *db.DB
	Auth     *auth.Service
	Catalog  *catalog.Service
	Media    *media.Local
	PageSize gallery.PageSizePolicy
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(d Deps) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        d.DB,
		Auth:      d.Auth,
		Catalog:   d.Catalog,
		Media:     d.Media,
		Templates: templates,
		PageSize:  d.PageSize,
	}

	r := chi.NewRouter()

	// Static assets and locally stored images.
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	r.Get("/media/{id}", s.MediaGet)

	// Public routes.
	r.Get("/", s.Landing)
	r.Post("/contato", s.MessageSubmit)
	r.Get("/admin", s.AdminPage)
	r.Post("/admin/login", s.LoginSubmit)
	r.Post("/admin/logout", s.Logout)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(CookieAuthMiddleware(d.Auth))

		r.Post("/admin/products", s.ProductCreateSubmit)
		r.Post("/admin/products/{id}", s.ProductUpdateSubmit)
		r.Post("/admin/products/{id}/delete", s.ProductDeleteSubmit)
		r.Post("/admin/contact", s.ContactSubmit)
		r.Post("/admin/messages/{id}/delete", s.MessageDeleteSubmit)

		r.Get("/admin/settings", s.SettingsPage)
		r.Post("/admin/settings/password", s.PasswordSubmit)
		r.Post("/admin/settings/users", s.UserCreateSubmit)
		r.Post("/admin/settings/users/{id}/delete", s.UserDeleteSubmit)
	})

	return r, nil
}
