package web

import (
	"net/http"

	"github.com/JonMunkholm/overlap/internal/core"
)

// withClientIP records the client IP in the request context so that workbook
// sessions note who created them. It runs after TrustedRealIP.
func withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClientIP(r.Context(), clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
