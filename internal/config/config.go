// Package config provides configuration management for multiauth.
//
// Configuration is loaded from:
// 1. config.yaml file (optional, or an explicit --config path)
// 2. Environment variables (standard names like DATABASE_URL, SERVER_PORT,
//    SELECTOR_ENFORCE_VALIDATION, AUTH_GUARDS_API_PROVIDER)
// 3. Default values
//
// Import Path: kv-shepherd.io/multiauth/internal/config
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"kv-shepherd.io/multiauth/internal/guard"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Selector SelectorConfig `mapstructure:"selector"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Health   HealthConfig   `mapstructure:"health"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AllowCredentials      bool     `mapstructure:"allow_credentials"`
	UnsafeAllowAllOrigins bool     `mapstructure:"unsafe_allow_all_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings. The database is
// only needed by providers using the database driver and by `migrate`.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// DSN returns the PostgreSQL connection string.
// Priority: DATABASE_URL > constructed from individual fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode,
	)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// AuthConfig mirrors the auth.* keys guard resolution reads.
type AuthConfig struct {
	Defaults  AuthDefaults                    `mapstructure:"defaults"`
	Guards    map[string]guard.GuardConfig    `mapstructure:"guards"`
	Providers map[string]guard.ProviderConfig `mapstructure:"providers"`
}

// AuthDefaults holds auth.defaults.
type AuthDefaults struct {
	Guard string `mapstructure:"guard"`
}

// SelectorConfig configures the provider selector middleware.
type SelectorConfig struct {
	Guard             string `mapstructure:"guard"`
	EnforceValidation bool   `mapstructure:"enforce_validation"`
}

// PublishConfig holds defaults of the publish command.
type PublishConfig struct {
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// HealthConfig configures the background provider health checker.
type HealthConfig struct {
	// ProviderCheckInterval of zero checks once at startup only.
	ProviderCheckInterval time.Duration `mapstructure:"provider_check_interval"`
	// ProviderCheckTimeout bounds each provider check.
	ProviderCheckTimeout time.Duration `mapstructure:"provider_check_timeout"`
	WorkerPoolSize       int           `mapstructure:"worker_pool_size"`
}

// Load reads configuration from ./config.yaml (optional) and the environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path, or searches for config.yaml when
// path is empty. A missing searched file is not an error; a missing explicit
// file is.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/multiauth")
	}

	// Maps nested config: selector.enforce_validation -> SELECTOR_ENFORCE_VALIDATION
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that guards point at configured providers and that
// database providers have a database.
func (c *Config) Validate() error {
	gc := c.GuardConfig()
	if _, ok := gc.Guards[gc.DefaultGuard]; !ok {
		return fmt.Errorf("auth.defaults.guard %q is not configured under auth.guards", gc.DefaultGuard)
	}

	names := make([]string, 0, len(gc.Guards))
	for name := range gc.Guards {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := gc.Guards[name]
		if _, ok := gc.ProviderConfig(g.Provider); !ok {
			return fmt.Errorf("auth.guards.%s.provider %q is not configured under auth.providers", name, g.Provider)
		}
	}

	for name, p := range gc.Providers {
		if strings.EqualFold(p.Driver, "database") && !c.Database.Enabled {
			return fmt.Errorf("auth.providers.%s uses the database driver but database.enabled is false", name)
		}
	}
	return nil
}

// GuardConfig returns the normalized guard configuration.
func (c *Config) GuardConfig() *guard.Config {
	return guard.NewConfig(c.Auth.Defaults.Guard, c.Auth.Guards, c.Auth.Providers)
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.allow_credentials", true)
	v.SetDefault("server.unsafe_allow_all_origins", false)

	// Database
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "multiauth")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "multiauth")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "10m")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Auth: one api guard backed by a static users provider.
	v.SetDefault("auth.defaults.guard", guard.DefaultGuard)
	v.SetDefault("auth.guards.api.driver", "passport")
	v.SetDefault("auth.guards.api.provider", "users")
	v.SetDefault("auth.providers.users.driver", "static")

	// Selector (strict by default)
	v.SetDefault("selector.guard", guard.DefaultGuard)
	v.SetDefault("selector.enforce_validation", true)

	// Publish
	v.SetDefault("publish.migrations_dir", "database/migrations")

	// Health
	v.SetDefault("health.provider_check_interval", "30s")
	v.SetDefault("health.provider_check_timeout", "5s")
	v.SetDefault("health.worker_pool_size", 8)
}
