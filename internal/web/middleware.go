package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/agrosoja/agrosoja/internal/auth"
)

type webContextKey string

const webClaimsKey webContextKey = "webclaims"

// Cookie names.
const (
	tokenCookie    = "token"
	viewportCookie = "vw"
)

// CookieAuthMiddleware validates the session cookie and adds claims to
// context. Requests without a valid session are sent to the login page.
func CookieAuthMiddleware(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := sessionFromCookie(r, svc)
			if claims == nil {
				clearAuthCookie(w)
				http.Redirect(w, r, "/admin", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), claims)))
		})
	}
}

func withSession(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, webClaimsKey, claims)
}

// sessionFromCookie returns the verified claims, or nil when the request
// carries no valid session.
func sessionFromCookie(r *http.Request, svc *auth.Service) *auth.Claims {
	cookie, err := r.Cookie(tokenCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims, err := svc.Verify(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidSession) {
			slog.Error("failed to check token revocation", "error", err)
		}
		return nil
	}
	return claims
}

// setAuthCookie stores the session token.
func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetWebClaims retrieves the JWT claims from web context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return claims
}

// viewportWidth returns the width reported by the browser, from the vw query
// parameter or the cookie the resize listener keeps current. Zero means
// unknown.
func viewportWidth(r *http.Request) int {
	if v := r.URL.Query().Get("vw"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	if c, err := r.Cookie(viewportCookie); err == nil {
		if n, err := strconv.Atoi(c.Value); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
