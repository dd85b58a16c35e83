package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"kv-shepherd.io/multiauth/internal/guard"
)

// DriverDescriptor describes a driver exposed to CLI/API listings.
type DriverDescriptor struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	BuiltIn     bool   `json:"built_in"`
}

// Driver builds user providers of one type.
type Driver interface {
	// Type returns the driver key used by auth.providers.<name>.driver.
	Type() string
	// New builds the provider called name from its configuration.
	New(name string, cfg guard.ProviderConfig, deps Deps) (UserProvider, error)
}

// DriverDescriber is an optional driver extension for metadata exposure.
type DriverDescriber interface {
	Describe() DriverDescriptor
}

// Registry stores available drivers.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewRegistry returns a registry holding the built-in drivers.
func NewRegistry() *Registry {
	r := &Registry{drivers: map[string]Driver{}}
	for _, builtin := range builtInDrivers() {
		_ = r.Register(builtin)
	}
	return r
}

func builtInDrivers() []Driver {
	return []Driver{
		databaseDriver{},
		staticDriver{},
	}
}

// Register registers a driver by type. Duplicate type keys are rejected.
func (r *Registry) Register(driver Driver) error {
	if driver == nil {
		return fmt.Errorf("driver is nil")
	}
	t := normalizeType(driver.Type())
	if t == "" {
		return fmt.Errorf("driver type is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.drivers[t]; exists {
		return fmt.Errorf("driver type already registered: %s", t)
	}
	r.drivers[t] = driver
	return nil
}

// Resolve returns the driver registered for driverType, or nil.
func (r *Registry) Resolve(driverType string) Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.drivers[normalizeType(driverType)]
}

// List returns all registered driver descriptors sorted by type.
func (r *Registry) List() []DriverDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]DriverDescriptor, 0, len(r.drivers))
	for t, d := range r.drivers {
		desc := DriverDescriptor{Type: t, DisplayName: strings.ToUpper(t)}
		if describer, ok := d.(DriverDescriber); ok {
			desc = describer.Describe()
			desc.Type = t
			if strings.TrimSpace(desc.DisplayName) == "" {
				desc.DisplayName = strings.ToUpper(t)
			}
		}
		items = append(items, desc)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Type < items[j].Type })
	return items
}

var globalRegistry = NewRegistry()

// RegisterDriver registers a driver globally.
func RegisterDriver(driver Driver) error {
	return globalRegistry.Register(driver)
}

// ListDrivers returns all globally registered driver descriptors.
func ListDrivers() []DriverDescriptor {
	return globalRegistry.List()
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
