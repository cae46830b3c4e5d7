package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/exercise-platform/internal/auth"
	"github.com/gokatarajesh/exercise-platform/internal/auth/jwt"
	"github.com/gokatarajesh/exercise-platform/internal/config"
	"github.com/gokatarajesh/exercise-platform/internal/db/repository"
	"github.com/gokatarajesh/exercise-platform/internal/exercise"
	"github.com/gokatarajesh/exercise-platform/internal/grading"
	"github.com/gokatarajesh/exercise-platform/internal/llm"
	"github.com/gokatarajesh/exercise-platform/internal/logging"
	"github.com/gokatarajesh/exercise-platform/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps logger, Postgres, Redis, the generation client and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	pool, err := repository.Connect(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	exerciseRepo := repository.NewExerciseRepository(pool)
	listingRepo := repository.NewListingRepository(pool)

	generator := llm.NewClient(llm.Config{
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.HTTPTimeout,
	}, logger)

	exerciseSvc := exercise.NewService(exerciseRepo, listingRepo, generator, exercise.ServiceOptions{
		Cache: exercise.NewCache(redisClient, cfg.Redis.DetailTTL),
	}, logger)
	gradingSvc := grading.NewService(exerciseSvc, generator, logger)

	var tokens auth.TokenValidator
	if cfg.Security.AuthEnabled {
		tokens = jwt.NewManager(jwt.TokenConfig{
			Secret: []byte(cfg.Security.JWTSecret),
			Issuer: cfg.Name,
		})
	} else {
		logger.Warn().Msg("AUTH_ENABLED is false; exercise API is open")
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, tokens,
		exercise.NewHTTPHandlers(exerciseSvc, logger),
		grading.NewHTTPHandlers(gradingSvc, logger),
	)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
