// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order. The
// first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gatehouse/config.yaml",
	"/etc/gatehouse/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load reads configuration with layered sources: struct defaults, then an
// optional YAML file, then environment variables. The result is validated;
// a malformed configuration fails here, at startup.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// The `acl:` section must survive as the raw document; koanf's struct
	// unmarshal of map[string]any fields flattens nothing, but guard
	// against a missing section.
	if cfg.ACL == nil {
		cfg.ACL = map[string]any{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive from environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated env strings to slices for the
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok {
			// Already a slice from YAML or defaults.
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envVarMap maps recognized environment variables to config paths. Only
// listed variables are honored, so unrelated process environment never
// bleeds into configuration.
var envVarMap = map[string]string{
	"SERVER_HOST":         "server.host",
	"SERVER_PORT":         "server.port",
	"SERVER_TIMEOUT":      "server.timeout",
	"CORS_ORIGINS":        "server.cors_origins",
	"RATE_LIMIT_REQS":     "server.rate_limit_reqs",
	"RATE_LIMIT_WINDOW":   "server.rate_limit_window",
	"RATE_LIMIT_DISABLED": "server.rate_limit_disabled",
	"JWT_SECRET":          "security.jwt_secret",
	"CASBIN_MODEL_PATH":   "security.casbin.model_path",
	"CASBIN_POLICY_PATH":  "security.casbin.policy_path",
	"CASBIN_DEFAULT_ROLE": "security.casbin.default_role",
	"LOG_LEVEL":           "logging.level",
	"LOG_FORMAT":          "logging.format",
	"LOG_CALLER":          "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unrecognized variables are dropped by returning "".
func envTransformFunc(key string) string {
	return envVarMap[strings.ToUpper(key)]
}
