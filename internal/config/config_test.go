// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8137 {
		t.Errorf("default port = %d, want 8137", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %+v, want info/json", cfg.Logging)
	}
	if cfg.ACL == nil {
		t.Error("default ACL document is nil, want empty map")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "port zero rejected",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "Port",
		},
		{
			name:    "port out of range rejected",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "Port",
		},
		{
			name:    "bad log level rejected",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "Level",
		},
		{
			name:    "bad log format rejected",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "Format",
		},
		{
			name:    "short jwt secret rejected",
			mutate:  func(c *Config) { c.Security.JWTSecret = "tooshort" },
			wantErr: "JWTSecret",
		},
		{
			name: "long jwt secret accepted",
			mutate: func(c *Config) {
				c.Security.JWTSecret = strings.Repeat("s", 32)
			},
		},
		{
			name: "zero rate limit window rejected when limiting enabled",
			mutate: func(c *Config) {
				c.Server.RateLimitWindow = 0
			},
			wantErr: "rate_limit_window",
		},
		{
			name: "zero rate limit window accepted when limiting disabled",
			mutate: func(c *Config) {
				c.Server.RateLimitWindow = 0
				c.Server.RateLimitDisabled = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"server_port", "server.port"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"LOG_LEVEL", "logging.level"},
		{"CASBIN_DEFAULT_ROLE", "security.casbin.default_role"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
