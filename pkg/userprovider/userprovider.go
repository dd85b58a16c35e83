// Package userprovider is the public contract for user-provider driver plugins.
//
// Plugin packages register drivers from init(); the composition root imports
// them once through plugins/userprovider/autoreg.
package userprovider

import (
	"fmt"

	"kv-shepherd.io/multiauth/internal/guard"
	internalprovider "kv-shepherd.io/multiauth/internal/provider"
)

// User is the identity returned by a provider.
type User = internalprovider.User

// UserProvider retrieves users from one identity source.
type UserProvider = internalprovider.UserProvider

// Driver builds providers of one type.
type Driver = internalprovider.Driver

// DriverDescriptor is the discoverable driver metadata.
type DriverDescriptor = internalprovider.DriverDescriptor

// Deps carries shared infrastructure handed to drivers.
type Deps = internalprovider.Deps

// Config is the configuration of one provider (auth.providers.<name>).
type Config = guard.ProviderConfig

// ErrUserNotFound must be wrapped by RetrieveByUsername for unknown users.
var ErrUserNotFound = internalprovider.ErrUserNotFound

// RegisterDriver registers a driver plugin.
func RegisterDriver(driver Driver) error {
	return internalprovider.RegisterDriver(driver)
}

// MustRegisterDriver registers a driver plugin and panics on failure.
func MustRegisterDriver(driver Driver) {
	if err := RegisterDriver(driver); err != nil {
		panic(fmt.Sprintf("user provider driver register failed: %v", err))
	}
}

// ListRegisteredDrivers returns current registered driver types.
func ListRegisteredDrivers() []DriverDescriptor {
	return internalprovider.ListDrivers()
}
