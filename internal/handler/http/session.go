package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Apie237/mern-chatapp/internal/auth"
	"github.com/Apie237/mern-chatapp/internal/domain"
	"github.com/Apie237/mern-chatapp/pkg/httputil"
	"github.com/Apie237/mern-chatapp/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "session_user"

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// SessionVerifier rejects requests without a valid session cookie and
// attaches the resolved user to the request context. Every rejection uses
// the same 401 body; store failures surface as 500.
func SessionVerifier(a Authenticator, fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r.Context(), auth.ReadSessionCookie(r))
			if err != nil {
				httputil.WriteError(w, r, err, fallback)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = logger.WithUserID(ctx, user.ID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", user.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user attached by SessionVerifier.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userContextKey).(*domain.User)
	return u, ok && u != nil
}
