// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package acl

import (
	"fmt"
	"sort"
)

// Wildcard is the configuration key for a scope's default entry.
const Wildcard = "*"

// Config is the parsed three-layer ACL. It is loaded once at process start
// and read-only thereafter.
type Config struct {
	// GlobalDefault applies when neither more specific layer matches.
	// Nil means the document had no top-level "*" entry; resolution then
	// behaves exactly as an explicit `"*": true`. The default is allow,
	// documented and overridable - set `"*": false` to lock a deployment
	// down by default.
	GlobalDefault *Spec

	// ControllerDefault holds each controller's own "*" entry.
	ControllerDefault map[string]Spec

	// ActionOverride holds per-action entries, keyed by controller then
	// action.
	ActionOverride map[string]map[string]Spec
}

// Parse converts the raw ACL document (the `acl:` section of the config
// file) into a Config. Malformed shapes fail here, at load time.
func Parse(raw map[string]any) (*Config, error) {
	cfg := &Config{
		ControllerDefault: make(map[string]Spec),
		ActionOverride:    make(map[string]map[string]Spec),
	}

	for key, value := range raw {
		if key == Wildcard {
			spec, err := parseSpec(value, false)
			if err != nil {
				return nil, fmt.Errorf("global default: %w", err)
			}
			cfg.GlobalDefault = &spec
			continue
		}

		controllerMap, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("controller %q: %w: expected a map of actions, got %T",
				key, ErrInvalidSpec, value)
		}
		if err := cfg.parseController(key, controllerMap); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// parseController fills in one controller's default and action overrides.
func (c *Config) parseController(controller string, entries map[string]any) error {
	for action, value := range entries {
		spec, err := parseSpec(value, false)
		if err != nil {
			return fmt.Errorf("controller %q, action %q: %w", controller, action, err)
		}

		if action == Wildcard {
			c.ControllerDefault[controller] = spec
			continue
		}

		if c.ActionOverride[controller] == nil {
			c.ActionOverride[controller] = make(map[string]Spec)
		}
		c.ActionOverride[controller][action] = spec
	}
	return nil
}

// Effective returns the specification governing (controller, action).
//
// Exactly one layer is consulted, most specific first: the action override,
// then the controller's "*" entry, then the global default. Layers are never
// combined. Resolution is a pure function of the three layers; calling it
// twice against the same Config yields the identical result.
func (c *Config) Effective(controller, action string) Spec {
	if actions, ok := c.ActionOverride[controller]; ok {
		if spec, ok := actions[action]; ok {
			return spec
		}
	}

	if spec, ok := c.ControllerDefault[controller]; ok {
		return spec
	}

	if c.GlobalDefault != nil {
		return *c.GlobalDefault
	}
	return Allow()
}

// Controllers returns every controller named by the ACL, sorted. Used for
// startup logging and validation output.
func (c *Config) Controllers() []string {
	seen := make(map[string]struct{}, len(c.ControllerDefault)+len(c.ActionOverride))
	for name := range c.ControllerDefault {
		seen[name] = struct{}{}
	}
	for name := range c.ActionOverride {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
