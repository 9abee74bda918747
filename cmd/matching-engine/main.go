package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talentbrains/matching-engine/internal/api"
	"github.com/talentbrains/matching-engine/internal/cache"
	"github.com/talentbrains/matching-engine/internal/cleanup"
	"github.com/talentbrains/matching-engine/internal/config"
	"github.com/talentbrains/matching-engine/internal/matching"
	"github.com/talentbrains/matching-engine/internal/scoring"
	"github.com/talentbrains/matching-engine/internal/seed"
	"github.com/talentbrains/matching-engine/internal/storage"
	"github.com/talentbrains/matching-engine/internal/warmup"
)

func main() {
	// Optional .env for local development; env vars win in deployment
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting matching-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("database connected successfully")

	// Apply seed fixtures when configured
	if cfg.Seed.Dir != "" {
		fixtures, err := seed.LoadDir(cfg.Seed.Dir)
		if err != nil {
			slog.Error("failed to load seed fixtures", "dir", cfg.Seed.Dir, "error", err)
			os.Exit(1)
		}
		if err := seed.ApplyDSN(initCtx, cfg.Database.DSN, fixtures); err != nil {
			slog.Error("failed to apply seed fixtures", "error", err)
			os.Exit(1)
		}
	}

	// Initialize the match cache. Redis being down is not fatal: the
	// service recomputes rankings on every request until it comes back.
	matchCache, err := cache.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Matching.CacheTTL)
	if err != nil {
		slog.Warn("redis unavailable, running without match cache", "error", err)
		matchCache = nil
	} else {
		defer matchCache.Close()
		slog.Info("redis connected successfully")
	}

	// Wire the scoring engine and matching service
	engine := scoring.NewEngine(cfg.Matching.Workers)
	service := matching.NewService(repo, matchCache, engine, cfg.Matching.MaxCandidates)

	// Create context with cancellation for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start stale-match pruning
	cleaner := cleanup.NewCleaner(repo, cfg.Cleanup.Interval, cfg.Cleanup.Retention)
	cleaner.Start(ctx)

	// Start the cache warm-up scheduler when enabled
	var warmer *warmup.Warmer
	if cfg.Warmup.Enabled {
		warmer = warmup.New(repo, service, cfg.Warmup.Interval)
		if err := warmer.Start(ctx); err != nil {
			slog.Error("failed to start warmup scheduler", "error", err)
			os.Exit(1)
		}
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, service, repo, cfg.Auth.Enabled)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()
	if warmer != nil {
		warmer.Stop()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("matching-engine stopped")
}
