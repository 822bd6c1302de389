package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"escrow-bot/internal/bot"
	"escrow-bot/internal/cache"
	"escrow-bot/internal/config"
	"escrow-bot/internal/escrow"
	"escrow-bot/internal/httpserver"
	"escrow-bot/internal/logging"
	"escrow-bot/internal/metrics"
	"escrow-bot/internal/report"
	"escrow-bot/internal/repo"
	"escrow-bot/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.AppEnv)
	logger.Info("starting escrow-bot", "env", cfg.AppEnv, "driver", cfg.DatabaseDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	var store repo.Store
	switch cfg.DatabaseDriver {
	case "postgres":
		store, err = repo.NewPostgres(ctx, cfg.DatabaseURL, logger)
	case "sqlite":
		store, err = repo.NewSQLite(ctx, cfg.SQLitePath, logger)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated")

	redisClient := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisTLS,
	}, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed closing redis", "error", err)
		}
	}()
	var reportCache report.Cache
	if err := redisClient.Ping(ctx); err != nil {
		logger.Warn("redis ping failed, report caching disabled", "error", err)
	} else {
		reportCache = redisClient
	}

	teleBot, err := bot.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("init telegram client: %w", err)
	}

	badges := bot.NewBioBadgeChecker(teleBot, cfg.BadgeToken, logger)
	service := escrow.NewService(store, badges, metricRegistry, logger, escrow.Config{
		ReportingOffset: cfg.ReportingOffset,
	})
	reports := report.NewEngine(store, reportCache, report.Config{
		BaseVolume: cfg.BaseTotalVolume,
		BaseCount:  cfg.BaseTotalCount,
		Offset:     cfg.ReportingOffset,
	})

	escrowBot := bot.New(teleBot, service, reports, cfg, metricRegistry, logger)
	go escrowBot.Start()
	defer escrowBot.Stop()

	httpSrv := httpserver.New(cfg.HTTPListenAddr, logger, metricRegistry, httpserver.Dependencies{
		Service: service,
		Store:   store,
		Redis:   redisClient,
	}, cfg.HTTPBasePath)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return nil
}
