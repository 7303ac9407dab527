package auth

import (
	"net/http"
	"strings"

	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// public paths stay reachable without a login.
var public = []string{"/login", "/static/", "/reload", "/hotreload"}

// RequireLogin redirects page requests of anonymous sessions to /login and
// rejects their datastar actions with 401. It is a no-op when creds has no
// password hash.
func RequireLogin(sessions *session.Manager, creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !creds.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range public {
				if r.URL.Path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(r.URL.Path, p)) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if sessions.Authenticated(r) {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("Datastar-Request") == "true" || r.Method != http.MethodGet {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		})
	}
}
