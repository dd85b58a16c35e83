package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"kv-shepherd.io/multiauth/internal/guard"
)

// Resolver builds the user provider a guard must consult for a request.
type Resolver struct {
	cfg      *guard.Config
	registry *Registry
	deps     Deps
}

// NewResolver creates a resolver over the global driver registry.
func NewResolver(cfg *guard.Config, deps Deps) *Resolver {
	return NewResolverWithRegistry(cfg, globalRegistry, deps)
}

// NewResolverWithRegistry creates a resolver over a specific registry.
func NewResolverWithRegistry(cfg *guard.Config, registry *Registry, deps Deps) *Resolver {
	return &Resolver{cfg: cfg, registry: registry, deps: deps}
}

// Resolution is the outcome of ForGuard.
type Resolution struct {
	Guard    string
	Provider UserProvider
	// Selected is true when the request selected the provider.
	Selected bool
}

// ForGuard resolves the provider of guardName (empty means the default guard).
func (r *Resolver) ForGuard(ctx context.Context, guardName string) (*Resolution, error) {
	if strings.TrimSpace(guardName) == "" {
		guardName = r.cfg.DefaultGuard
	}

	name, selected, err := r.cfg.Provider(ctx, guardName)
	if err != nil {
		return nil, err
	}

	up, err := r.ForProvider(name)
	if err != nil {
		return nil, fmt.Errorf("guard %s: %w", guardName, err)
	}
	return &Resolution{Guard: guardName, Provider: up, Selected: selected}, nil
}

// ForProvider builds the provider configured under auth.providers.<name>.
func (r *Resolver) ForProvider(name string) (UserProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	pcfg, ok := r.cfg.ProviderConfig(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	driver := r.registry.Resolve(pcfg.Driver)
	if driver == nil {
		return nil, fmt.Errorf("%w: %q (provider %s)", ErrUnknownDriver, pcfg.Driver, key)
	}

	up, err := driver.New(key, pcfg, r.deps)
	if err != nil {
		return nil, fmt.Errorf("build provider %q: %w", key, err)
	}
	return up, nil
}

// Providers returns the configured provider names, sorted.
func (r *Resolver) Providers() []string {
	names := make([]string, 0, len(r.cfg.Providers))
	for name := range r.cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
