package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/characters-analyzer/backend/api"
	"github.com/characters-analyzer/backend/api/routes"
	"github.com/characters-analyzer/backend/internal/artifacts"
	"github.com/characters-analyzer/backend/internal/auth"
	"github.com/characters-analyzer/backend/internal/characters"
	"github.com/characters-analyzer/backend/internal/users"
	"github.com/characters-analyzer/backend/pkg/auth/session"
	"github.com/characters-analyzer/backend/pkg/config"
	"github.com/characters-analyzer/backend/pkg/db"
	"github.com/characters-analyzer/backend/pkg/logger"
	"github.com/characters-analyzer/backend/pkg/metrics"
	"github.com/characters-analyzer/backend/pkg/migrate"
	"github.com/characters-analyzer/backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured, auth rate limiting disabled")
	}

	userRepo := users.NewRepository(dbClient.DB())
	sessionManager, err := session.NewManager(userRepo, cfg.JWT)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	characterService, err := characters.NewService(characters.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	artifactService, err := artifacts.NewService(dbClient)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := api.NewServer(cfg.App, routes.NewRouter(routes.Dependencies{
		Config:            cfg,
		Logger:            logg,
		DB:                dbClient,
		Redis:             redisClient,
		Metrics:           metrics.NewHTTPMetrics(registry),
		Gatherer:          registry,
		AuthService:       authService,
		CharactersService: characterService,
		ArtifactsService:  artifactService,
	}))

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    server.Addr,
		"version": cfg.App.Version,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
