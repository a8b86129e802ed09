package middleware

import "net/http"

// NoStore marks every response as uncacheable. Auth responses carry
// identities and Set-Cookie headers that must not be reused by a shared cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
