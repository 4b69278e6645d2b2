package authsess

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authsess APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Gateway GatewayConfig
	Vault   VaultConfig
	Events  EventsConfig
	Metrics MetricsConfig
	Startup StartupConfig
}

/*
====================================
GATEWAY CONFIG
====================================
*/

// GatewayConfig defines a public type used by authsess APIs.
//
// GatewayConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GatewayConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

/*
====================================
VAULT CONFIG
====================================
*/

// VaultConfig defines a public type used by authsess APIs.
//
// VaultConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VaultConfig struct {
	RedisPrefix string
}

// EventsConfig defines a public type used by authsess APIs.
//
// EventsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authsess APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// StartupConfig defines a public type used by authsess APIs.
//
// StartupConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StartupConfig struct {
	// CheckAuth runs the reconciliation once in the background after Build.
	CheckAuth bool
	// Timeout bounds the startup reconciliation.
	Timeout time.Duration
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			UserAgent: "authsess",
			Timeout:   10 * time.Second,
		},
		Vault: VaultConfig{
			RedisPrefix: "authsess",
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Startup: StartupConfig{
			CheckAuth: true,
			Timeout:   15 * time.Second,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency. Gateway
// reachability is not checked; a wrong BaseURL surfaces as ErrNetwork at
// call time.
func (c *Config) Validate() error {
	if c.Gateway.Timeout < 0 {
		return errors.New("Gateway Timeout must be >= 0")
	}
	if c.Gateway.BaseURL != "" &&
		!strings.HasPrefix(c.Gateway.BaseURL, "http://") &&
		!strings.HasPrefix(c.Gateway.BaseURL, "https://") {
		return errors.New("Gateway BaseURL must be an http(s) URL")
	}

	if strings.ContainsAny(c.Vault.RedisPrefix, " \t\n") {
		return errors.New("Vault RedisPrefix must not contain whitespace")
	}

	if c.Events.Enabled {
		if c.Events.BufferSize <= 0 {
			return errors.New("Events BufferSize must be > 0 when events are enabled")
		}
	}

	if c.Startup.CheckAuth && c.Startup.Timeout <= 0 {
		return errors.New("Startup Timeout must be > 0 when CheckAuth is enabled")
	}

	return nil
}
