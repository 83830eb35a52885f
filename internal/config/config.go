// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

// Package config loads and validates Gatehouse configuration.
//
// Configuration is layered via Koanf v2, highest priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (SERVER_PORT, LOG_LEVEL, JWT_SECRET, ...)
//
// The declarative ACL lives under the `acl:` key of the config file and is
// kept as a raw document here; internal/acl owns its parsing and validation.
// Configuration-shape errors fail process startup - a typo in the ACL must
// never degrade to a silent allow at request time.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`

	// ACL is the raw three-layer policy document, parsed by internal/acl.
	ACL map[string]any `koanf:"acl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SecurityConfig holds settings for the stock policies.
type SecurityConfig struct {
	// JWTSecret signs and verifies bearer tokens for the isAuthenticated
	// policy. Required when that policy is referenced by the ACL.
	JWTSecret string `koanf:"jwt_secret" validate:"omitempty,min=32"`

	Casbin CasbinConfig `koanf:"casbin"`
}

// CasbinConfig holds settings for the rbac policy's Casbin enforcer.
type CasbinConfig struct {
	// ModelPath and PolicyPath point at Casbin model/policy files. Empty
	// paths fall back to the embedded defaults.
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`

	// DefaultRole is assumed for requests with no authenticated subject.
	DefaultRole string `koanf:"default_role"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8137,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Security: SecurityConfig{
			Casbin: CasbinConfig{
				DefaultRole: "anonymous",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		// Absent ACL means allow-everything, same as an explicit
		// `"*": true`. Deployments that want default-deny set
		// `"*": false` at the top of the acl section.
		ACL: map[string]any{},
	}
}

// validate is the package-level validator instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for structural and semantic problems.
// Called by Load; exported for tests and embedders.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid configuration: field %s fails %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !c.Server.RateLimitDisabled && c.Server.RateLimitWindow <= 0 {
		return errors.New("invalid configuration: server.rate_limit_window must be positive")
	}

	return nil
}
