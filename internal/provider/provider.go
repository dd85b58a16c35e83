// Package provider resolves the user provider an auth guard consults.
//
// The guard's provider comes from guard.Config, so a selection made earlier in
// the request by the provider selector middleware is honored. Providers are
// built by drivers registered in a Registry (built-in: database, static).
// Providers only retrieve users; credential checks belong to the host.
//
// Import Path: kv-shepherd.io/multiauth/internal/provider
package provider

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrUnknownProvider is returned when a guard points at a provider missing
	// from auth.providers.
	ErrUnknownProvider = errors.New("unknown user provider")
	// ErrUnknownDriver is returned when a provider uses an unregistered driver.
	ErrUnknownDriver = errors.New("unknown user provider driver")
	// ErrUserNotFound is returned by RetrieveByUsername for unknown users.
	ErrUserNotFound = errors.New("user not found")
)

// User is the identity a provider returns.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Provider string `json:"provider"`
}

// UserProvider retrieves users from one backing identity source.
type UserProvider interface {
	// Name returns the provider key from auth.providers.
	Name() string
	// Driver returns the driver type that built the provider.
	Driver() string
	// RetrieveByUsername returns ErrUserNotFound when no user matches.
	RetrieveByUsername(ctx context.Context, username string) (*User, error)
}

// Checker is implemented by providers that can verify their backing source.
// Providers without it are healthy once built.
type Checker interface {
	Check(ctx context.Context) error
}

// Querier is the subset of *pgxpool.Pool used by the database driver.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Deps carries shared infrastructure handed to drivers.
type Deps struct {
	// DB is nil when no database is configured.
	DB Querier
}
