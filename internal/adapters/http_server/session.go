package httpserver

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"gezgi_admin/internal/app"
	"gezgi_admin/internal/domain"
)

const (
	// TokenCookie holds the API session token.
	TokenCookie = "x-auth-token"
	// UICookie identifies the browser whose accordion state and notices are stored.
	UICookie = "gz-ui"
)

type CookieConfig struct {
	MaxAge int
	Secure bool
}

type sessionKey struct{}

// SessionFrom returns the request's session. Requests that did not pass
// through Session get the zero value.
func SessionFrom(ctx context.Context) domain.Session {
	s, _ := ctx.Value(sessionKey{}).(domain.Session)
	return s
}

// Session resolves the token cookie into claims and makes sure every
// browser carries a ui id.
func Session(cc CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s domain.Session
			if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
				s.Token = c.Value
				s.Claims, _ = app.ParseClaims(c.Value)
			}
			if c, err := r.Cookie(UICookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					s.UI = c.Value
				}
			}
			if s.UI == "" {
				s.UI = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name: UICookie, Value: s.UI, Path: "/",
					HttpOnly: true, Secure: cc.Secure, SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

// RequireToken redirects visitors without a token cookie to the login page.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setToken(w http.ResponseWriter, cc CookieConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name: TokenCookie, Value: token, Path: "/", MaxAge: cc.MaxAge,
		HttpOnly: true, Secure: cc.Secure, SameSite: http.SameSiteLaxMode,
	})
}

func clearToken(w http.ResponseWriter, cc CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name: TokenCookie, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, Secure: cc.Secure, SameSite: http.SameSiteLaxMode,
	})
}
