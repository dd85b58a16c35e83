// Package handlers implements the multiauth HTTP API.
//
// Routes are registered by the app router; handlers do NOT register their own
// routes.
//
// Import Path: kv-shepherd.io/multiauth/internal/api/handlers
package handlers

import (
	"context"

	"kv-shepherd.io/multiauth/internal/guard"
	"kv-shepherd.io/multiauth/internal/provider"
)

// Pinger is the readiness dependency (a *pgxpool.Pool in production).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter exposes cached user provider health.
type HealthReporter interface {
	Snapshot() []provider.ProviderHealth
}

// Server holds handler dependencies.
type Server struct {
	resolver *provider.Resolver
	db       Pinger
	health   HealthReporter
	guard    string
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	Resolver *provider.Resolver
	// DB is optional; nil when no database is configured.
	DB Pinger
	// Health is optional; readiness skips provider checks when nil.
	Health HealthReporter
	// Guard resolved by the auth endpoints; empty means guard.DefaultGuard.
	Guard string
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	g := deps.Guard
	if g == "" {
		g = guard.DefaultGuard
	}
	return &Server{
		resolver: deps.Resolver,
		db:       deps.DB,
		health:   deps.Health,
		guard:    g,
	}
}
