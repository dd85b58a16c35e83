// Package main is the entry point of the multiauth HTTP server.
//
// The config file is read from MULTIAUTH_CONFIG when set, otherwise
// ./config.yaml is searched.
//
// Import Path: kv-shepherd.io/multiauth/cmd/server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"kv-shepherd.io/multiauth/internal/app"
	"kv-shepherd.io/multiauth/internal/config"
	"kv-shepherd.io/multiauth/internal/pkg/logger"
	"kv-shepherd.io/multiauth/internal/provider"
)

const configEnv = "MULTIAUTH_CONFIG"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFile(os.Getenv(configEnv))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	gc := cfg.GuardConfig()
	logger.Info("Starting multiauth",
		zap.Int("port", cfg.Server.Port),
		zap.String("default_guard", gc.DefaultGuard),
		zap.String("selector_guard", cfg.Selector.Guard),
		zap.Bool("enforce_validation", cfg.Selector.EnforceValidation),
		zap.Bool("database", cfg.Database.Enabled),
		zap.Duration("provider_check_interval", cfg.Health.ProviderCheckInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer application.Shutdown()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start provider health checks: %w", err)
	}
	for _, h := range application.Health.Snapshot() {
		logger.Info("User provider",
			zap.String("provider", h.Provider),
			zap.String("driver", h.Driver),
			zap.String("status", string(h.Status)),
		)
		if h.Status == provider.HealthBroken {
			logger.Warn("User provider cannot be built; requests selecting it will fail",
				zap.String("provider", h.Provider),
				zap.String("error", h.Error),
			)
		}
	}

	return serve(ctx, cfg.Server, application.Router)
}

// serve runs the HTTP server until ctx is cancelled, then drains it within
// the configured shutdown timeout.
func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("Server started", zap.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
