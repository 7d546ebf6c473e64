package middleware

import (
	"net/http"
	"strings"
)

// AuthCookie is set by the login handler once the admin password is accepted.
const AuthCookie = "authenticated"

// AuthMiddleware sprawdza, czy użytkownik jest zalogowany (ma cookie 'authenticated=true').
// Chronione są tylko ścieżki panelu administracyjnego, klasyfikator jest publiczny.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		if !isProtected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// Sprawdź czy użytkownik jest zalogowany
		cookie, err := r.Cookie(AuthCookie)
		if err != nil || cookie.Value != "true" {
			// Jeśli to zapytanie AJAX/API, zwróć 401
			if r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
				r.Header.Get("Content-Type") == "application/json" ||
				strings.Contains(r.Header.Get("Accept"), "application/json") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			// Dla zwykłych żądań przekieruj na login
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isProtected(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}
