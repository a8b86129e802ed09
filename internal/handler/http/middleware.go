package http

import (
	"net/http"
	"strings"

	"github.com/Apie237/mern-chatapp/pkg/httputil"
)

// ContentTypeJSON enforces that POST and PUT requests carrying a body declare
// Content-Type: application/json. Bodiless requests such as logout pass.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasBody := r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody
		if hasBody && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "Route not found"},
	})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"},
	})
}
