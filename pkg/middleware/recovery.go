package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
	"github.com/Apie237/mern-chatapp/pkg/httputil"
)

// Recovery turns a panic in a handler into a generic 500 error envelope.
// http.ErrAbortHandler is re-panicked so the server can abort the response.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				l.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				// Already logged above with the stack; pass a discard logger.
				httputil.WriteError(w, r, apperrors.Internal(fmt.Errorf("panic: %v", rec)), slog.New(slog.DiscardHandler))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
