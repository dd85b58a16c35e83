package provider

import (
	"context"
	"fmt"

	"kv-shepherd.io/multiauth/internal/guard"
)

// DriverStatic serves users listed in configuration.
const DriverStatic = "static"

type staticDriver struct{}

func (staticDriver) Type() string { return DriverStatic }

func (staticDriver) Describe() DriverDescriptor {
	return DriverDescriptor{
		Type:        DriverStatic,
		DisplayName: "Static",
		Description: "Users listed under auth.providers.<name>.users",
		BuiltIn:     true,
	}
}

func (staticDriver) New(name string, cfg guard.ProviderConfig, _ Deps) (UserProvider, error) {
	users := make(map[string]User, len(cfg.Users))
	for _, su := range cfg.Users {
		if su.Username == "" {
			return nil, fmt.Errorf("provider %q: static user without username", name)
		}
		id := su.ID
		if id == "" {
			id = su.Username
		}
		users[su.Username] = User{ID: id, Username: su.Username, Provider: name}
	}
	return &StaticProvider{name: name, users: users}, nil
}

// StaticProvider is an in-memory UserProvider.
type StaticProvider struct {
	name  string
	users map[string]User
}

func (p *StaticProvider) Name() string   { return p.name }
func (p *StaticProvider) Driver() string { return DriverStatic }

func (p *StaticProvider) RetrieveByUsername(_ context.Context, username string) (*User, error) {
	u, ok := p.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUserNotFound, p.name, username)
	}
	return &u, nil
}
