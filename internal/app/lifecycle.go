package app

import (
	"context"
	"time"

	"kv-shepherd.io/multiauth/internal/pkg/logger"
)

const workerReleaseTimeout = 10 * time.Second

// Start runs the first provider health check and schedules the periodic
// ones.
func (a *Application) Start(ctx context.Context) error {
	if a.Health != nil {
		a.Health.Start(ctx)
		logger.Info("Provider health checker started")
	}
	return nil
}

// Shutdown releases application resources. It is safe on a partially
// built Application.
func (a *Application) Shutdown() {
	if a.Health != nil {
		a.Health.Stop()
	}
	if a.workers != nil {
		a.workers.Release(workerReleaseTimeout)
	}
	if a.Pool != nil {
		a.Pool.Close()
		logger.Info("Database connection pool closed")
	}
}
