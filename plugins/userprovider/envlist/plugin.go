// Package envlist is a user-provider driver reading usernames from an
// environment variable, e.g. MULTIAUTH_PROVIDER_ADMINS_USERS=alice,bob.
package envlist

import (
	"context"
	"fmt"
	"os"
	"strings"

	"kv-shepherd.io/multiauth/pkg/userprovider"
)

// Type is the driver key.
const Type = "envlist"

// Driver builds envlist providers. Lookup reads the environment; tests swap it.
type Driver struct {
	Lookup func(key string) (string, bool)
}

func (d *Driver) Type() string {
	return Type
}

func (d *Driver) Describe() userprovider.DriverDescriptor {
	return userprovider.DriverDescriptor{
		Type:        Type,
		DisplayName: "Environment list",
		Description: "Comma-separated usernames read from MULTIAUTH_PROVIDER_<NAME>_USERS",
	}
}

func (d *Driver) New(name string, cfg userprovider.Config, _ userprovider.Deps) (userprovider.UserProvider, error) {
	lookup := d.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	key := VarName(name)
	raw, ok := lookup(key)
	if !ok {
		return nil, fmt.Errorf("provider %q: %s is not set", name, key)
	}

	users := map[string]struct{}{}
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			users[u] = struct{}{}
		}
	}
	return &Provider{name: name, users: users}, nil
}

// VarName returns the environment variable holding the users of a provider.
func VarName(provider string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(provider))
	return "MULTIAUTH_PROVIDER_" + name + "_USERS"
}

// Provider serves the usernames of one variable. Usernames double as IDs.
type Provider struct {
	name  string
	users map[string]struct{}
}

func (p *Provider) Name() string   { return p.name }
func (p *Provider) Driver() string { return Type }

func (p *Provider) RetrieveByUsername(_ context.Context, username string) (*userprovider.User, error) {
	if _, ok := p.users[username]; !ok {
		return nil, fmt.Errorf("%w: %s/%s", userprovider.ErrUserNotFound, p.name, username)
	}
	return &userprovider.User{ID: username, Username: username, Provider: p.name}, nil
}

func init() {
	userprovider.MustRegisterDriver(&Driver{})
}
