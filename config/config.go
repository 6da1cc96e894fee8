package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Login replay policies for already-consumed login links.
const (
	ReplayLenient = "lenient"
	ReplayStrict  = "strict"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	DBUrl       string `env:"DATABASE_URL"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	// Extra origins allowed by CORS besides FrontendURL
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RunMigrations      bool     `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Sessions
	SessionSecret     string `env:"SESSION_SECRET"`
	SessionIssuer     string `env:"SESSION_ISSUER" envDefault:"careers-backend"`
	LoginReplayPolicy string `env:"LOGIN_REPLAY_POLICY" envDefault:"lenient"`

	// SMTP Configuration
	SMTPHost      string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	SMTPFromEmail string `env:"SMTP_FROM_EMAIL" envDefault:"careers@localhost"`
	SMTPFromName  string `env:"SMTP_FROM_NAME" envDefault:"Careers"`
	OpsEmail      string `env:"OPS_EMAIL"`

	// Redis Configuration
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Rate Limiting Configuration
	RateLimitWindowSeconds   int `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitAuthThreshold   int `env:"RATE_LIMIT_AUTH_THRESHOLD" envDefault:"10"`
	RateLimitGlobalThreshold int `env:"RATE_LIMIT_GLOBAL_THRESHOLD" envDefault:"100"`
	RateLimitUploadThreshold int `env:"RATE_LIMIT_UPLOAD_THRESHOLD" envDefault:"10"`
	FailedLoginBlockMinutes  int `env:"FAILED_LOGIN_BLOCK_MINUTES" envDefault:"15"`
	FailedLoginMaxAttempts   int `env:"FAILED_LOGIN_MAX_ATTEMPTS" envDefault:"5"`

	// Admin panel
	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	// Base32 secret; when set admin login also requires a TOTP code
	AdminTOTPSecret string `env:"ADMIN_TOTP_SECRET"`

	// Object storage
	S3Provider        string `env:"S3_PROVIDER" envDefault:"aws"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Region          string `env:"S3_REGION" envDefault:"ap-southeast-1"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
	WasabiEndpoint    string `env:"WASABI_ENDPOINT"`
	UploadMaxBytes    int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	UploadDailyLimit  int    `env:"UPLOAD_DAILY_LIMIT" envDefault:"50"`
	// clamd TCP address or unix socket path; empty disables scanning
	ClamAVAddress string `env:"CLAMAV_ADDRESS"`
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AllowedOrigins returns the frontend origin plus any extra configured origins.
func (c *Config) AllowedOrigins() []string {
	origins := []string{c.FrontendURL}
	for _, o := range c.CORSAllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func LoadConfig() (*Config, error) {
	// .env only exists locally
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	c.S3PublicBaseURL = strings.TrimRight(c.S3PublicBaseURL, "/")
	c.LoginReplayPolicy = strings.ToLower(strings.TrimSpace(c.LoginReplayPolicy))

	switch c.LoginReplayPolicy {
	case ReplayLenient, ReplayStrict:
	default:
		return fmt.Errorf("LOGIN_REPLAY_POLICY must be %q or %q, got %q", ReplayLenient, ReplayStrict, c.LoginReplayPolicy)
	}

	if c.SessionSecret == "" {
		if c.IsProduction() {
			return errors.New("SESSION_SECRET is required in production")
		}
		log.Println("WARNING: SESSION_SECRET is missing. Using an insecure development secret.")
		c.SessionSecret = "dev-only-insecure-secret"
	}

	if c.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if c.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}
	return nil
}
