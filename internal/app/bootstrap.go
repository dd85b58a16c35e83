// Package app is the composition root: it wires configuration, the optional
// database pool, the user provider resolver and the HTTP router.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"kv-shepherd.io/multiauth/internal/api/handlers"
	"kv-shepherd.io/multiauth/internal/config"
	"kv-shepherd.io/multiauth/internal/infrastructure"
	"kv-shepherd.io/multiauth/internal/pkg/logger"
	"kv-shepherd.io/multiauth/internal/pkg/worker"
	"kv-shepherd.io/multiauth/internal/provider"

	// Out-of-tree user provider drivers.
	_ "kv-shepherd.io/multiauth/plugins/userprovider/autoreg"
)

// Application holds composed application dependencies.
type Application struct {
	Config   *config.Config
	Router   *gin.Engine
	Resolver *provider.Resolver
	Health   *provider.HealthChecker
	// Pool is nil when database.enabled is false.
	Pool    *pgxpool.Pool
	workers *worker.Pool
}

// Bootstrap initializes all dependencies using manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	var (
		pool *pgxpool.Pool
		deps provider.Deps
		db   handlers.Pinger
	)
	if cfg.Database.Enabled {
		p, err := infrastructure.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		pool = p
		deps.DB = p
		db = p
	}

	workers, err := worker.New("provider-health", cfg.Health.WorkerPoolSize)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("init worker pool: %w", err)
	}

	resolver := provider.NewResolver(cfg.GuardConfig(), deps)
	health := provider.NewHealthChecker(resolver, workers, cfg.Health.ProviderCheckInterval, cfg.Health.ProviderCheckTimeout)
	server := handlers.NewServer(handlers.ServerDeps{
		Resolver: resolver,
		DB:       db,
		Health:   health,
		Guard:    cfg.Selector.Guard,
	})

	drivers := make([]string, 0)
	for _, d := range provider.ListDrivers() {
		drivers = append(drivers, d.Type)
	}
	logger.Info("User provider drivers registered", zap.Strings("drivers", drivers))

	return &Application{
		Config:   cfg,
		Router:   newRouter(cfg, server),
		Resolver: resolver,
		Health:   health,
		Pool:     pool,
		workers:  workers,
	}, nil
}
