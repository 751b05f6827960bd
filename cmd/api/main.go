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

	"github.com/gmlima14/irf/api"
	"github.com/gmlima14/irf/api/routes"
	"github.com/gmlima14/irf/internal/pipeline"
	"github.com/gmlima14/irf/internal/sources"
	"github.com/gmlima14/irf/pkg/config"
	"github.com/gmlima14/irf/pkg/instance"
	"github.com/gmlima14/irf/pkg/logger"
	"github.com/gmlima14/irf/pkg/metrics"
	"github.com/gmlima14/irf/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "irf-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "irf-api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := sources.Deps{Logger: logg}
	if cfg.Cache.Enabled {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		deps.Redis = redisClient
	}

	provider, err := sources.Build(ctx, cfg, deps)
	if err != nil {
		logg.Error(ctx, "failed to build sources", err)
		os.Exit(1)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			logg.Error(context.Background(), "error closing sources", err)
		}
	}()

	svc, err := pipeline.NewService(pipeline.ServiceParams{
		Logger:   logg,
		Provider: provider,
		Metrics:  metrics.NewReportMetrics(prometheus.DefaultRegisterer),
		Location: cfg.Report.Location(),
		Trigger:  "api",
	})
	if err != nil {
		logg.Error(ctx, "failed to create report service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	checks := provider.Pingers()
	if redisClient, ok := deps.Redis.(*redis.Client); ok {
		checks["redis"] = redisClient
	}
	server := api.NewServer(cfg, port, routes.NewRouter(cfg, logg, checks, svc, prometheus.DefaultGatherer))

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
		"sources":  provider.Describe,
	})
	logg.Info(logCtx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "api server shutdown failed", err)
		}
	}
}
