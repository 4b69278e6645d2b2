package authsess

import (
	"context"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/opencampus/authsess/gateway"
	"github.com/opencampus/authsess/internal/events"
	"github.com/opencampus/authsess/session"
	"github.com/opencampus/authsess/vault"
)

// Builder defines a public type used by authsess APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	redis      *redis.Client
	vault      Vault
	gateway    Gateway
	httpClient *http.Client
	sink       EventSink

	built bool
}

// New creates a Builder with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL sets the backend base URL for the default HTTP gateway.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.Gateway.BaseURL = baseURL
	return b
}

// WithHTTPClient sets the http.Client the default gateway uses. Ignored
// when a Gateway is injected directly.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithRedis persists the session in Redis under the configured prefix.
// Without a Redis client or an injected Vault, sessions live in process
// memory and do not survive restarts.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithVault injects a custom Vault implementation. Takes precedence over
// WithRedis.
func (b *Builder) WithVault(v Vault) *Builder {
	b.vault = v
	return b
}

// WithGateway injects a custom Gateway implementation. Takes precedence
// over the BaseURL-derived HTTP gateway.
func (b *Builder) WithGateway(g Gateway) *Builder {
	b.gateway = g
	return b
}

// WithEventSink enables event dispatch into sink.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	b.config.Events.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles the metrics collector.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles login latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithStartupCheck toggles the background reconciliation that runs once
// after Build.
func (b *Builder) WithStartupCheck(enabled bool) *Builder {
	b.config.Startup.CheckAuth = enabled
	return b
}

// Build validates the configuration and assembles the Controller.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gw := b.gateway
	if gw == nil {
		if cfg.Gateway.BaseURL == "" {
			return nil, errors.New("gateway base URL or Gateway implementation required")
		}
		gw = gateway.NewHTTPGateway(gateway.Config{
			BaseURL:   cfg.Gateway.BaseURL,
			UserAgent: cfg.Gateway.UserAgent,
			Timeout:   cfg.Gateway.Timeout,
		}, b.httpClient)
	}

	v := b.vault
	if v == nil {
		if b.redis != nil {
			v = vault.NewRedisVault(b.redis, cfg.Vault.RedisPrefix)
		} else {
			v = vault.NewMemoryVault()
		}
	}

	c := &Controller{
		config:  cfg,
		store:   session.NewStore(),
		vault:   v,
		gateway: gw,
		events: events.NewDispatcher(events.Config{
			Enabled:    cfg.Events.Enabled,
			BufferSize: cfg.Events.BufferSize,
			DropIfFull: cfg.Events.DropIfFull,
		}, b.sink),
		metrics: NewMetrics(cfg.Metrics),
	}

	if cfg.Startup.CheckAuth {
		c.startup.Add(1)
		go func() {
			defer c.startup.Done()
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Startup.Timeout)
			defer cancel()
			c.CheckAuth(ctx)
		}()
	}

	b.built = true

	return c, nil
}
