package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dandantas/profilewatch/internal/config"
	"github.com/dandantas/profilewatch/internal/export"
	"github.com/dandantas/profilewatch/internal/handler"
	"github.com/dandantas/profilewatch/internal/notify"
	"github.com/dandantas/profilewatch/internal/remote"
	"github.com/dandantas/profilewatch/internal/scheduler"
	"github.com/dandantas/profilewatch/internal/session"
	"github.com/dandantas/profilewatch/internal/tracker"
	"github.com/dandantas/profilewatch/internal/worker"
	"github.com/dandantas/profilewatch/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	config.InitLogger(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting profilewatch", "version", version, "engine", cfg.ProfilerAPIURL)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pollSchedule, err := tracker.ParseSchedule(cfg.PollSchedule)
	if err != nil {
		slog.Error("Invalid poll schedule", "schedule", cfg.PollSchedule, "error", err)
		os.Exit(1)
	}

	// Profiling engine client
	client := remote.NewClient(cfg.ProfilerAPIURL, remote.NewHTTPClient(), remote.Timeouts{
		Request:  cfg.ProfileAPITimeout,
		Transfer: cfg.TransferTimeout,
		Insights: cfg.InsightsTimeout,
	})

	// Background work: insights generation and notification delivery
	pool := worker.NewPool(cfg.WorkerPoolSize, cfg.WorkerQueueSize)
	pool.Start()

	feed := notify.NewRecorder(cfg.NotifyHistoryLimit)
	notifiers := notify.Fanout{notify.LogNotifier{}, feed}
	if cfg.NotifyWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.NotifyWebhookURL, cfg.NotifyWebhookTimeout, notify.RetryPolicy{}))
		slog.Info("Webhook notifications enabled", "url", cfg.NotifyWebhookURL)
	}

	sessions := session.NewManager(session.Deps{
		Remote:         client,
		MaxUploadBytes: cfg.UploadMaxBytes,
		Tracker: tracker.Options{
			Schedule: pollSchedule,
			MaxWait:  cfg.PollTimeout,
		},
		Saver:    export.NewDirSaver(cfg.ExportDir),
		Pool:     pool,
		Notifier: notifiers,
	}, cfg.SessionIdleTTL)

	// Idle session reaper
	reaper, err := scheduler.NewReaper(sessions, cfg.SessionReapSchedule)
	if err != nil {
		slog.Error("Invalid reap schedule", "schedule", cfg.SessionReapSchedule, "error", err)
		os.Exit(1)
	}
	reaper.Start(ctx)

	// Create CORS config
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}

	router := handler.NewRouter(
		sessions,
		cfg.UploadMaxBytes,
		cfg.HTTPWriteTimeout,
		feed,
		handler.NewHealthHandler(client, sessions, version),
		corsConfig,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	slog.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	reaper.Stop(shutdownCtx)
	sessions.CloseAll()
	pool.Stop()

	slog.Info("profilewatch stopped")
}
