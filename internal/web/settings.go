package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrosoja/agrosoja/internal/model"
	"github.com/agrosoja/agrosoja/internal/store"
)

type settingsData struct {
	PageData
	Users []model.User
}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
	}

	s.Templates.RenderStatus(w, status, "settings.html", &settingsData{
		PageData: PageData{
			Title:   "Configurações",
			User:    GetWebClaims(r.Context()),
			Error:   errMsg,
			Success: flashes[r.URL.Query().Get("ok")],
		},
		Users: users,
	})
}

// SettingsPage handles GET /admin/settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.renderSettings(w, r, http.StatusOK, "")
}

// PasswordSubmit handles POST /admin/settings/password (change own password).
func (s *Server) PasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		s.renderSettings(w, r, http.StatusBadRequest, "Informe a senha atual e a nova senha.")
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "A nova senha deve ter pelo menos 8 caracteres.")
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		s.renderSettings(w, r, http.StatusInternalServerError, "Erro ao carregar o usuário.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "Senha atual incorreta.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.renderSettings(w, r, http.StatusInternalServerError, "Erro ao salvar a senha.")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash)); err != nil {
		slog.Error("failed to update password", "error", err)
		s.renderSettings(w, r, http.StatusInternalServerError, "Erro ao salvar a senha.")
		return
	}

	slog.Info("user changed own password", "user", claims.Email)
	http.Redirect(w, r, "/admin/settings?ok=senha", http.StatusSeeOther)
}

// UserCreateSubmit handles POST /admin/settings/users.
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	email := model.NormalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		s.renderSettings(w, r, http.StatusBadRequest, "Informe e-mail e senha do novo administrador.")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "A senha deve ter pelo menos 8 caracteres.")
		return
	}

	existing, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		s.renderSettings(w, r, http.StatusInternalServerError, "Erro ao criar administrador.")
		return
	}
	if existing != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "Já existe um administrador com esse e-mail.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if _, err := store.CreateUser(r.Context(), s.DB, email, string(hash)); err != nil {
		slog.Error("failed to create user", "error", err)
		s.renderSettings(w, r, http.StatusInternalServerError, "Erro ao criar administrador.")
		return
	}

	slog.Info("user created", "user", claims.Email, "new_user", email)
	http.Redirect(w, r, "/admin/settings?ok=usuario", http.StatusSeeOther)
}

// UserDeleteSubmit handles POST /admin/settings/users/{id}/delete.
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
		return
	}
	if id == claims.UserID {
		s.renderSettings(w, r, http.StatusBadRequest, "Você não pode remover a própria conta.")
		return
	}

	if err := store.DeleteUser(r.Context(), s.DB, id); err != nil {
		slog.Error("failed to delete user", "error", err)
		s.renderSettings(w, r, http.StatusInternalServerError, "Erro ao remover administrador.")
		return
	}

	slog.Info("user deleted", "user", claims.Email, "deleted_id", id)
	http.Redirect(w, r, "/admin/settings?ok=removido", http.StatusSeeOther)
}
