package authsess

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative gateway timeout", mutate: func(c *Config) {
			c.Gateway.Timeout = -time.Second
		}, wantErr: true},
		{name: "base url without scheme", mutate: func(c *Config) {
			c.Gateway.BaseURL = "school.example"
		}, wantErr: true},
		{name: "https base url", mutate: func(c *Config) {
			c.Gateway.BaseURL = "https://school.example"
		}},
		{name: "redis prefix with whitespace", mutate: func(c *Config) {
			c.Vault.RedisPrefix = "auth sess"
		}, wantErr: true},
		{name: "events enabled without buffer", mutate: func(c *Config) {
			c.Events.Enabled = true
			c.Events.BufferSize = 0
		}, wantErr: true},
		{name: "startup check without timeout", mutate: func(c *Config) {
			c.Startup.Timeout = 0
		}, wantErr: true},
		{name: "startup disabled ignores timeout", mutate: func(c *Config) {
			c.Startup.CheckAuth = false
			c.Startup.Timeout = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
