package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Apie237/mern-chatapp/internal/password"
	pkgconfig "github.com/Apie237/mern-chatapp/pkg/config"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the auth service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"5001"`

	// PostgreSQL. DATABASE_URL overrides the individual fields.
	DatabaseURL  string `env:"DATABASE_URL"`
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"chat"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"chat_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"chat"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	DBMaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns         int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime  time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime  time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"15m"`
	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Sessions
	JWTSecret    string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTIssuer    string        `env:"JWT_ISSUER" envDefault:"chat-auth"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Image host. Cloudinary is required outside development; without it uploads
	// are kept in memory.
	UploadTimeout       time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"20s"`
	CloudinaryCloudName string        `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string        `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string        `env:"CLOUDINARY_API_SECRET"`
	CloudinaryBaseURL   string        `env:"CLOUDINARY_BASE_URL" envDefault:"https://api.cloudinary.com"`
	CloudinaryFolder    string        `env:"CLOUDINARY_FOLDER" envDefault:"avatars"`
	ImageBaseURL        string        `env:"IMAGE_BASE_URL" envDefault:"http://localhost:5001"`

	// Redis login throttle. LOGIN_MAX_ATTEMPTS=0 disables it.
	RedisAddr          string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	LoginMaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginAttemptWindow time.Duration `env:"LOGIN_ATTEMPT_WINDOW" envDefault:"15m"`

	// Per-IP limit on signup and login. AUTH_RATE_LIMIT_RPS=0 disables it.
	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"1"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`
	TrustProxyHeaders  bool    `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// pprof is mounted only when at least one CIDR is set.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load auth config: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// UseCloudinary reports whether Cloudinary credentials are configured.
func (c *Config) UseCloudinary() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Validate checks cross-field rules after parsing.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if c.BcryptCost < password.MinCost || c.BcryptCost > password.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", password.MinCost, password.MaxCost, c.BcryptCost))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.StoreTimeout <= 0 || c.UploadTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT and UPLOAD_TIMEOUT must be positive"))
	}
	if c.LoginMaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("LOGIN_MAX_ATTEMPTS must not be negative, got %d", c.LoginMaxAttempts))
	}
	if c.LoginMaxAttempts > 0 && c.LoginAttemptWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_ATTEMPT_WINDOW must be positive when throttling is enabled"))
	}
	if c.AuthRateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_RPS must not be negative, got %v", c.AuthRateLimitRPS))
	}
	if c.AuthRateLimitRPS > 0 && c.AuthRateLimitBurst < 1 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled"))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.OTELSampleRate))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}

	// Outside development require an explicitly set, strong JWT secret.
	if !c.IsDevelopment() {
		if c.JWTSecret == defaultJWTSecret {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment))
		} else if len(c.JWTSecret) < 32 {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret)))
		}
		for _, o := range c.CORSAllowedOrigins {
			if o == "*" {
				errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must not contain * outside development"))
			}
		}
		// The in-memory image host is for development only.
		if !c.UseCloudinary() {
			errs = append(errs, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set in %q mode", c.Environment))
		}
	}

	return errors.Join(errs...)
}
