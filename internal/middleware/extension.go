package middleware

import (
	"crypto/subtle"
	"net/http"
)

// ExtensionKey guards the companion-extension routes. When a shared key is
// configured, requests must carry it in X-Extension-Key; comparison is
// constant time. An empty configured key leaves the routes open.
func ExtensionKey(sharedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sharedKey != "" {
				got := r.Header.Get("X-Extension-Key")
				if subtle.ConstantTimeCompare([]byte(got), []byte(sharedKey)) != 1 {
					writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid extension key", r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
