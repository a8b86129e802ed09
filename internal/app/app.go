package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/Apie237/mern-chatapp/internal/auth"
	"github.com/Apie237/mern-chatapp/internal/config"
	"github.com/Apie237/mern-chatapp/internal/event"
	handler "github.com/Apie237/mern-chatapp/internal/handler/http"
	"github.com/Apie237/mern-chatapp/internal/imagehost"
	"github.com/Apie237/mern-chatapp/internal/password"
	"github.com/Apie237/mern-chatapp/internal/repository/postgres"
	"github.com/Apie237/mern-chatapp/internal/service"
	"github.com/Apie237/mern-chatapp/internal/throttle"
	"github.com/Apie237/mern-chatapp/migrations"
	"github.com/Apie237/mern-chatapp/pkg/database"
	"github.com/Apie237/mern-chatapp/pkg/health"
	"github.com/Apie237/mern-chatapp/pkg/httpclient"
	pkgkafka "github.com/Apie237/mern-chatapp/pkg/kafka"
	"github.com/Apie237/mern-chatapp/pkg/middleware"
	"github.com/Apie237/mern-chatapp/pkg/tracing"
)

// Version is reported to the tracing backend.
var Version = "dev"

// App wires together all dependencies and runs the auth service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		a.closeResources()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "auth",
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		Insecure:       cfg.OTELInsecure,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	// Initialize PostgreSQL connection pool.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.URL = cfg.DatabaseURL
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL
	if cfg.DBMaxConns > 0 {
		pgCfg.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns > 0 {
		pgCfg.MinConns = cfg.DBMinConns
	}
	if cfg.DBMaxConnLifetime > 0 {
		pgCfg.MaxConnLifetime = cfg.DBMaxConnLifetime
	}
	if cfg.DBMaxConnIdleTime > 0 {
		pgCfg.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	}
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "auth"); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	// Build the dependency graph.
	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("create password hasher: %w", err)
	}
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.SessionTTL,
		Issuer: cfg.JWTIssuer,
	})
	if err != nil {
		return fmt.Errorf("create token issuer: %w", err)
	}

	uploader, err := a.newUploader()
	if err != nil {
		return err
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	var loginThrottle service.LoginThrottle
	if cfg.LoginMaxAttempts > 0 {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB
		client, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		loginThrottle = throttle.New(client, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.Info("login throttle enabled",
			slog.Int("max_attempts", cfg.LoginMaxAttempts),
			slog.Duration("window", cfg.LoginAttemptWindow),
		)
	}

	var events service.EventPublisher = event.NopPublisher{}
	if cfg.KafkaEnabled {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.producer = producer
		events = event.NewProducer(producer)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	userRepo := postgres.NewUserRepository(pool)
	authService := service.NewAuthService(userRepo, hasher, tokens, uploader, events, loginThrottle, service.Config{
		StoreTimeout:  cfg.StoreTimeout,
		UploadTimeout: cfg.UploadTimeout,
	}, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	router := handler.NewRouter(authService, healthHandler, logger, handler.RouterConfig{
		CORS:              cors,
		SecureCookie:      !cfg.IsDevelopment(),
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		AuthRateLimit: middleware.RateLimitConfig{
			RPS:               cfg.AuthRateLimitRPS,
			Burst:             cfg.AuthRateLimitBurst,
			TrustProxyHeaders: cfg.TrustProxyHeaders,
		},
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.UploadTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (a *App) newUploader() (service.ImageUploader, error) {
	cfg := a.cfg
	if !cfg.UseCloudinary() {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("cloudinary credentials are required in %q mode", cfg.Environment)
		}
		a.logger.Warn("cloudinary not configured; profile pictures are kept in memory")
		return imagehost.NewMemoryUploader(cfg.ImageBaseURL), nil
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.UploadTimeout
	uploader, err := imagehost.NewCloudinaryUploader(imagehost.CloudinaryConfig{
		BaseURL:   cfg.CloudinaryBaseURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
	}, httpCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary uploader: %w", err)
	}
	return uploader, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer, Redis and PostgreSQL
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases everything init may have opened. It is safe to
// call on a partially initialized App.
func (a *App) closeResources() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.redis = nil
	}

	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	return errors.Join(errs...)
}
