package middleware

import (
	"net/http"

	"github.com/kadapaimran/grocery-storefront/internal/session"
)

type sessionReader interface {
	Snapshot() session.State
}

// SessionGuard gates views behind the session container: an unauthenticated
// session is redirected to the login path, an authenticated one passes
// through unchanged.
func SessionGuard(sessions sessionReader, loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Snapshot().Authenticated {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
