// Package guard holds the auth guard configuration and the per-request
// provider selection made by the provider selector middleware.
//
// Base values come from the loaded configuration. A request may override the
// provider of a guard; the override lives in the request context, never in
// process-wide state, so concurrent requests cannot observe each other.
//
// Import Path: kv-shepherd.io/multiauth/internal/guard
package guard

import (
	"context"
	"fmt"
	"strings"
)

// DefaultGuard is the guard the selector writes to when none is configured.
const DefaultGuard = "api"

// Key returns the configuration key holding the provider of a guard,
// e.g. "auth.guards.api.provider".
func Key(guard string) string {
	return fmt.Sprintf("auth.guards.%s.provider", normalize(guard))
}

// GuardConfig describes one guard.
type GuardConfig struct {
	Driver   string `mapstructure:"driver"`
	Provider string `mapstructure:"provider"`
}

// ProviderConfig describes one user provider a guard can consult.
type ProviderConfig struct {
	Driver string `mapstructure:"driver"` // database or static
	Table  string `mapstructure:"table"`
	// Users is only read by the static driver.
	Users []StaticUser `mapstructure:"users"`
}

// StaticUser is a user entry of a static provider.
type StaticUser struct {
	ID       string `mapstructure:"id"`
	Username string `mapstructure:"username"`
}

type overridesKey struct{}

// overrides maps configuration keys to request-supplied values.
type overrides map[string]string

// WithProvider returns a copy of ctx in which guard consults provider.
// The value is stored verbatim.
func WithProvider(ctx context.Context, guard, provider string) context.Context {
	prev, _ := ctx.Value(overridesKey{}).(overrides)
	next := make(overrides, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[Key(guard)] = provider
	return context.WithValue(ctx, overridesKey{}, next)
}

// SelectedProvider reports the provider selected for guard by the current request.
func SelectedProvider(ctx context.Context, guard string) (string, bool) {
	return lookupOverride(ctx, Key(guard))
}

func lookupOverride(ctx context.Context, key string) (string, bool) {
	if ctx == nil {
		return "", false
	}
	o, ok := ctx.Value(overridesKey{}).(overrides)
	if !ok {
		return "", false
	}
	v, ok := o[key]
	return v, ok
}

// Config is the guard configuration of the application.
type Config struct {
	DefaultGuard string
	Guards       map[string]GuardConfig
	Providers    map[string]ProviderConfig
}

// NewConfig normalizes guard and provider names of the given maps.
func NewConfig(defaultGuard string, guards map[string]GuardConfig, providers map[string]ProviderConfig) *Config {
	c := &Config{
		DefaultGuard: normalize(defaultGuard),
		Guards:       make(map[string]GuardConfig, len(guards)),
		Providers:    make(map[string]ProviderConfig, len(providers)),
	}
	if c.DefaultGuard == "" {
		c.DefaultGuard = DefaultGuard
	}
	for name, g := range guards {
		c.Guards[normalize(name)] = g
	}
	for name, p := range providers {
		c.Providers[normalize(name)] = p
	}
	return c
}

// Lookup resolves a configuration key. A request override wins over the base
// configuration. Only guard keys (auth.guards.<name>.<field>) and provider
// keys (auth.providers.<name>.<field>) with scalar fields are known.
func (c *Config) Lookup(ctx context.Context, key string) (string, bool) {
	if v, ok := lookupOverride(ctx, key); ok {
		return v, true
	}
	if c == nil {
		return "", false
	}

	parts := strings.Split(key, ".")
	if len(parts) != 4 || parts[0] != "auth" {
		return "", false
	}
	name, field := normalize(parts[2]), parts[3]
	switch parts[1] {
	case "guards":
		g, ok := c.Guards[name]
		if !ok {
			return "", false
		}
		switch field {
		case "provider":
			return g.Provider, true
		case "driver":
			return g.Driver, true
		}
	case "providers":
		p, ok := c.Providers[name]
		if !ok {
			return "", false
		}
		switch field {
		case "driver":
			return p.Driver, true
		case "table":
			return p.Table, true
		}
	}
	return "", false
}

// Provider returns the provider guard must consult for the current request and
// whether it was selected by the request rather than configured.
func (c *Config) Provider(ctx context.Context, guard string) (string, bool, error) {
	if guard == "" && c != nil {
		guard = c.DefaultGuard
	}
	if v, ok := SelectedProvider(ctx, guard); ok {
		return v, true, nil
	}
	if c == nil {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownGuard, guard)
	}
	g, ok := c.Guards[normalize(guard)]
	if !ok {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownGuard, guard)
	}
	return g.Provider, false, nil
}

// ProviderConfig returns the configuration of a provider.
func (c *Config) ProviderConfig(name string) (ProviderConfig, bool) {
	if c == nil {
		return ProviderConfig{}, false
	}
	p, ok := c.Providers[normalize(name)]
	return p, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
