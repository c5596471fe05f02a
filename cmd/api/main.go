package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/terravista/whatsapp-concierge/internal/app/bootstrap"
	appconfig "github.com/terravista/whatsapp-concierge/internal/config"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

func main() {
	// Load .env in development; ignore absence in production.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting whatsapp-concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if missing := cfg.MissingRequired(); len(missing) > 0 {
		for _, name := range missing {
			logger.Error("missing required environment variable", "name", name)
		}
		os.Exit(1)
	}
	for _, name := range cfg.MissingGoogle() {
		logger.Warn("google integration variable unset, feature degraded", "name", name)
	}

	ctx := context.Background()
	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire application", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	// Warm the knowledge base before serving; a failure is not fatal, the
	// admin refresh endpoint can retry later.
	refreshCtx, cancelRefresh := context.WithTimeout(ctx, 30*time.Second)
	if err := rt.Knowledge.Refresh(refreshCtx); err != nil {
		logger.Warn("initial knowledge load failed", "error", err)
	}
	cancelRefresh()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rt.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
