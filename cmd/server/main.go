package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/catalogconv/internal/config"
	"github.com/JonMunkholm/catalogconv/internal/core"
	_ "github.com/JonMunkholm/catalogconv/internal/core/platforms" // Register all platform profiles
	"github.com/JonMunkholm/catalogconv/internal/logging"
	"github.com/JonMunkholm/catalogconv/internal/metrics"
	"github.com/JonMunkholm/catalogconv/internal/refdata"
	"github.com/JonMunkholm/catalogconv/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"reference_source", cfg.Reference.ReferenceSource(),
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Load the category taxonomy once; it is shared read-only afterwards.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Reference.LoadTimeout)
	ref, err := refdata.Load(loadCtx, refdata.Options{
		Source:      refdata.Source(cfg.Reference.ReferenceSource()),
		Dir:         cfg.Reference.Dir,
		DatabaseURL: cfg.Reference.DatabaseURL,
		MaxConns:    cfg.Reference.MaxConns,
		SQLitePath:  cfg.Reference.SQLitePath,
	})
	cancelLoad()
	if err != nil {
		slog.Error("failed to load reference data", "error", err)
		os.Exit(1)
	}
	if ref.Empty() {
		slog.Warn("no reference categories loaded; every row will use the default category")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New()
	collector.Register(reg)
	for _, level := range []core.CategoryLevel{core.LevelCategory, core.LevelSubCategory, core.LevelSubSubCategory} {
		collector.SetReferenceRows(level.String(), len(ref.Table(level)))
	}

	service := core.NewService(ref, core.ServiceConfig{
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
		SessionTTL:    cfg.Upload.SessionTTL,
		PreviewRows:   cfg.Upload.PreviewRows,
	})
	service.SetRecorder(collector)

	// Log registered platforms
	slog.Info("platforms registered", "count", core.PlatformCount())
	for _, p := range core.Platforms() {
		slog.Debug("platform profile", "key", p.Key, "fields", len(p.Fields))
	}

	server := web.NewServer(service, cfg, metrics.Handler(reg))

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.Sessions().StartSweeper(jobCtx, cfg.Upload.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active conversions to complete (with timeout)
		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for conversions to complete", "active", status.Active)
			if err := service.Shutdown(shutdownCtx); err != nil {
				slog.Warn("conversions did not complete in time", "error", err)
			} else {
				slog.Info("all conversions completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
