package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/exercise-platform/internal/auth"
	"github.com/gokatarajesh/exercise-platform/internal/config"
	"github.com/gokatarajesh/exercise-platform/internal/logging"
)

// APIPrefix is where the exercise routes are mounted.
const APIPrefix = "/api/exercises"

// Registrar mounts a group of routes on the API mux.
type Registrar interface {
	Register(mux *http.ServeMux)
}

// NewHTTPServer wires infra routes and the exercise API. tokens may be nil
// when authentication is disabled.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, tokens auth.TokenValidator, routes ...Registrar) *http.Server {
	ping := func(ctx context.Context) error {
		return pingDependencies(ctx, pool, redis)
	}
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewHandler(cfg, logger, ping, tokens, routes...),
	}
}

// NewHandler builds the full middleware chain around the route tree.
func NewHandler(cfg *config.App, logger zerolog.Logger, ping func(context.Context) error, tokens auth.TokenValidator, routes ...Registrar) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r.Context()); err != nil {
			logging.FromContext(r.Context()).Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	api := http.NewServeMux()
	for _, r := range routes {
		r.Register(api)
	}
	var apiHandler http.Handler = api
	if cfg.Security.AuthEnabled && tokens != nil {
		apiHandler = auth.Middleware(tokens, logger.With().Str("component", "auth").Logger())(apiHandler)
		logger.Info().Msg("exercise API requires auth-token")
	}
	mux.Handle(APIPrefix+"/", http.StripPrefix(APIPrefix, apiHandler))

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})

	return logging.Middleware(logger)(metricsMiddleware(corsHandler(mux)))
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// routeLabel keeps metric cardinality bounded to registered patterns.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if i := strings.IndexByte(r.Pattern, ' '); i >= 0 {
		return r.Pattern[i+1:]
	}
	return r.Pattern
}
