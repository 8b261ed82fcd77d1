package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/agrosoja/agrosoja/internal/auth"
)

// LoginSubmit handles POST /admin/login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Acesso restrito",
			Error: "Informe e-mail e senha.",
		})
		return
	}

	sess, err := s.Auth.SignIn(r.Context(), email, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("login failed", "email", email, "remote", r.RemoteAddr)
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "login.html", &PageData{
			Title: "Acesso restrito",
			Error: "E-mail ou senha incorretos.",
		})
		return
	}
	if err != nil {
		slog.Error("failed to sign in", "error", err)
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "login.html", &PageData{
			Title: "Acesso restrito",
			Error: "Erro ao entrar. Tente novamente.",
		})
		return
	}

	setAuthCookie(w, sess.Token)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /admin/logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(tokenCookie); err == nil && cookie.Value != "" {
		if err := s.Auth.SignOut(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to revoke token", "error", err)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
