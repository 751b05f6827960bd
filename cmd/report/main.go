package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/gmlima14/irf/internal/orders"
	"github.com/gmlima14/irf/internal/pipeline"
	"github.com/gmlima14/irf/internal/sources"
	"github.com/gmlima14/irf/pkg/config"
	"github.com/gmlima14/irf/pkg/instance"
	"github.com/gmlima14/irf/pkg/logger"
	"github.com/gmlima14/irf/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "irf-report"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	ordersPath := flag.String("orders", "", "path to the open orders file (.csv or .xlsx)")
	outDir := flag.String("out", cfg.Report.OutputDir, "directory the report is written to")
	flag.Parse()

	logg = logger.New(logger.Options{
		ServiceName: "irf-report",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if *ordersPath == "" {
		fmt.Fprintln(os.Stderr, "usage: report -orders <file> [-out <dir>]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "instance", instance.GetID())

	path, err := run(ctx, cfg, logg, *ordersPath, *outDir)
	if err != nil {
		logg.Error(ctx, "report failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "path", path), "report written")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, ordersPath, outDir string) (path string, err error) {
	data, err := os.ReadFile(ordersPath)
	if err != nil {
		return "", fmt.Errorf("reading orders: %w", err)
	}
	batch, err := orders.ReadTable(filepath.Base(ordersPath), data, orders.ParseOptions{DayFirst: cfg.Report.DayFirst})
	if err != nil {
		return "", err
	}

	deps := sources.Deps{Logger: logg}
	if cfg.Cache.Enabled {
		redisClient, rerr := redis.New(ctx, cfg.Redis, logg)
		if rerr != nil {
			return "", rerr
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		deps.Redis = redisClient
	}

	provider, err := sources.Build(ctx, cfg, deps)
	if err != nil {
		return "", err
	}
	defer func() { err = multierr.Append(err, provider.Close()) }()

	svc, err := pipeline.NewService(pipeline.ServiceParams{
		Logger:   logg,
		Provider: provider,
		Location: cfg.Report.Location(),
		Trigger:  "cli",
	})
	if err != nil {
		return "", err
	}

	result, err := svc.Score(ctx, batch)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path = filepath.Join(outDir, svc.FileName(result))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	if err := svc.Render(ctx, f, result); err != nil {
		return "", err
	}
	return path, nil
}
