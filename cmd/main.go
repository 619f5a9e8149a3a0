/*
Package main is the entry point for the Plaza server.

It loads configuration, initializes the global logging system, wires the
presence registry, login broadcaster, and viewing-session manager together,
sets up the HTTP server, and handles operating system interrupt signals
(SIGINT, SIGTERM) for a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plaza/internal/app/plaza"
	"plaza/internal/app/presence"
	"plaza/internal/configs"
	"plaza/internal/handler"
	"plaza/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("dwell_duration", cfg.DwellDuration).
		Bool("seed_demo_users", cfg.SeedDemoUsers).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One wall-clock day key source for every dedupe decision in the process.
	today := presence.DayFunc(presence.UTCDayKey)

	registry := presence.NewRegistry()
	if cfg.SeedDemoUsers {
		registry.SeedDemoUsers(today())
	}

	broadcaster := presence.NewBroadcaster()
	manager := plaza.NewManager(registry, today, cfg.DwellDuration)

	deps := &handler.AppDeps{
		Registry:    registry,
		Broadcaster: broadcaster,
		Manager:     manager,
		Config:      cfg,
		Today:       today,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Plaza Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for the interrupt signal, then shut down with a 5 second budget.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	manager.Shutdown()
	broadcaster.Shutdown()

	logx.Info("Server gracefully stopped.")
}
