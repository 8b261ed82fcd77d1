package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agrosoja/agrosoja/internal/auth"
	"github.com/agrosoja/agrosoja/internal/catalog"
	"github.com/agrosoja/agrosoja/internal/db"
	"github.com/agrosoja/agrosoja/internal/gallery"
)

// Deps are the services the API is built on.
type Deps struct {
	DB       *db.DB
	Auth     *auth.Service
	Catalog  *catalog.Service
	PageSize gallery.PageSizePolicy
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	authHandler := &AuthHandler{DB: d.DB, Auth: d.Auth}
	usersHandler := &UsersHandler{DB: d.DB}
	productsHandler := &ProductsHandler{Catalog: d.Catalog, PageSize: d.PageSize}
	contactHandler := &ContactHandler{Catalog: d.Catalog}
	messagesHandler := &MessagesHandler{Catalog: d.Catalog}

	r.Route("/api", func(r chi.Router) {
		// Public.
		r.Post("/auth/login", authHandler.Login)
		r.Get("/products", productsHandler.List)
		r.Get("/products/{id}", productsHandler.Get)
		r.Get("/contact", contactHandler.Get)
		r.Post("/messages", messagesHandler.Create)

		// Authenticated.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(d.Auth))

			r.Post("/auth/logout", authHandler.Logout)
			r.Put("/auth/password", authHandler.ChangePassword)

			r.Post("/products", productsHandler.Create)
			r.Put("/products/{id}", productsHandler.Update)
			r.Delete("/products/{id}", productsHandler.Delete)
			r.Put("/products/{id}/image", productsHandler.UploadImage)

			r.Put("/contact", contactHandler.Update)

			r.Get("/messages", messagesHandler.List)
			r.Delete("/messages/{id}", messagesHandler.Delete)

			r.Get("/users", usersHandler.List)
			r.Post("/users", usersHandler.Create)
			r.Delete("/users/{id}", usersHandler.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
