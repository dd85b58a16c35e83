package provider

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"kv-shepherd.io/multiauth/internal/pkg/logger"
	"kv-shepherd.io/multiauth/internal/pkg/worker"
)

// HealthStatus is the outcome of a provider health check.
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "UNKNOWN"
	HealthHealthy   HealthStatus = "HEALTHY"
	HealthUnhealthy HealthStatus = "UNHEALTHY"
	// HealthBroken means the provider could not be built (unknown driver,
	// invalid table, missing database).
	HealthBroken HealthStatus = "BROKEN"
)

// ProviderHealth contains one health check result.
type ProviderHealth struct {
	Provider    string       `json:"provider"`
	Driver      string       `json:"driver,omitempty"`
	Status      HealthStatus `json:"status"`
	LastChecked time.Time    `json:"last_checked"`
	Error       string       `json:"error,omitempty"`
}

// DefaultCheckTimeout bounds a provider check when no timeout is configured.
const DefaultCheckTimeout = 5 * time.Second

// HealthChecker periodically builds and checks every configured provider.
type HealthChecker struct {
	resolver *Resolver
	pool     *worker.Pool
	interval time.Duration
	timeout  time.Duration

	mu       sync.RWMutex
	results  map[string]*ProviderHealth
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHealthChecker creates a checker fanning checks out over pool. Each
// check is cancelled after timeout.
func NewHealthChecker(resolver *Resolver, pool *worker.Pool, interval, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &HealthChecker{
		resolver: resolver,
		pool:     pool,
		interval: interval,
		timeout:  timeout,
		results:  make(map[string]*ProviderHealth),
		stopCh:   make(chan struct{}),
	}
}

// CheckProvider performs a single health check bounded by the checker's
// timeout.
func (c *HealthChecker) CheckProvider(ctx context.Context, name string) *ProviderHealth {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	health := &ProviderHealth{Provider: name, LastChecked: time.Now()}

	up, err := c.resolver.ForProvider(name)
	if err != nil {
		health.Status = HealthBroken
		health.Error = err.Error()
		return health
	}
	health.Driver = up.Driver()

	if checker, ok := up.(Checker); ok {
		if err := checker.Check(ctx); err != nil {
			health.Status = HealthUnhealthy
			health.Error = err.Error()
			return health
		}
	}
	health.Status = HealthHealthy
	return health
}

// CheckAll checks every configured provider concurrently and stores the
// results.
func (c *HealthChecker) CheckAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, name := range c.resolver.Providers() {
		wg.Add(1)
		err := c.pool.Submit(ctx, func(ctx context.Context) {
			defer wg.Done()
			c.update(c.CheckProvider(ctx, name))
		})
		if err != nil {
			wg.Done()
			logger.Warn("Provider health check not scheduled",
				zap.String("provider", name),
				zap.Error(err),
			)
		}
	}
	wg.Wait()
	logger.Debug("Provider health checks finished", zap.Any("pool", c.pool.Stats()))

	for _, h := range c.Snapshot() {
		if h.Status != HealthHealthy {
			logger.Warn("User provider unhealthy",
				zap.String("provider", h.Provider),
				zap.String("status", string(h.Status)),
				zap.String("error", h.Error),
			)
		}
	}
}

// Health returns the cached result for a provider.
func (c *HealthChecker) Health(name string) *ProviderHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if h, ok := c.results[name]; ok {
		return h
	}
	return &ProviderHealth{Provider: name, Status: HealthUnknown}
}

// Snapshot returns the cached result of every configured provider, in
// provider name order.
func (c *HealthChecker) Snapshot() []ProviderHealth {
	names := c.resolver.Providers()
	out := make([]ProviderHealth, 0, len(names))
	for _, name := range names {
		out = append(out, *c.Health(name))
	}
	return out
}

func (c *HealthChecker) update(h *ProviderHealth) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[h.Provider] = h
}

// Start runs CheckAll once, then every interval until Stop or ctx is done.
func (c *HealthChecker) Start(ctx context.Context) {
	c.CheckAll(ctx)
	if c.interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CheckAll(ctx)
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts periodic checking. Safe to call more than once.
func (c *HealthChecker) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}
