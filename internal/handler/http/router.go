package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Apie237/mern-chatapp/internal/service"
	"github.com/Apie237/mern-chatapp/pkg/health"
	"github.com/Apie237/mern-chatapp/pkg/middleware"
)

// ServiceName labels metrics and traces emitted by the router.
const ServiceName = "auth"

// RouterConfig holds what NewRouter needs beyond the service.
type RouterConfig struct {
	CORS         middleware.CORSConfig
	SecureCookie bool

	// PprofAllowedCIDRs mounts /debug/pprof when non-empty.
	PprofAllowedCIDRs []string

	// AuthRateLimit limits signup and login per client IP.
	AuthRateLimit middleware.RateLimitConfig

	// MetricsHandler defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

// NewRouter creates a chi router with the auth routes and operational
// endpoints registered.
func NewRouter(
	authService *service.AuthService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	metrics := cfg.MetricsHandler
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metrics)

	if len(cfg.PprofAllowedCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	authHandler := NewAuthHandler(authService, cfg.SecureCookie, logger)
	limit := middleware.RateLimit(cfg.AuthRateLimit, logger)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)

		r.With(limit).Post("/signup", authHandler.Signup)
		r.With(limit).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(SessionVerifier(authService, logger))

			r.Put("/update-profile", authHandler.UpdateProfile)
			r.Get("/check", authHandler.CheckAuth)
		})
	})

	return r
}
