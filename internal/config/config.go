package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"exercise-platform"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Security Security
	AI       AI
	CORS     CORS
}

// Postgres captures connection info for the exercise store.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// ConnString renders the keyword/value DSN understood by pgx.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.MaxConns)
}

// Redis holds detail-cache configuration.
type Redis struct {
	Addr      string        `env:"REDIS_ADDR,notEmpty"`
	DB        int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize  int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	DetailTTL time.Duration `env:"REDIS_DETAIL_TTL" envDefault:"10m"`
}

// Security stores the shared token secret and whether the API is gated.
type Security struct {
	JWTSecret   string `env:"JWT_SECRET" envDefault:"secretKey"`
	AuthEnabled bool   `env:"AUTH_ENABLED" envDefault:"false"`
}

// AI configures the upstream text-generation endpoint.
// A zero HTTPTimeout leaves the transport default in place.
type AI struct {
	BaseURL     string        `env:"OLLAMA_BASE_URL" envDefault:"http://127.0.0.1:11434"`
	Model       string        `env:"OLLAMA_MODEL" envDefault:"llama3.2"`
	HTTPTimeout time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"0s"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,auth-token"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
