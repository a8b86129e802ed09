package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Apie237/mern-chatapp/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// whatever correlation id and trace span are already present. Handlers
// retrieve it with logger.FromContext. Mount it after RequestLogging and
// Tracing. The session verifier adds user_id once the caller is known.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
