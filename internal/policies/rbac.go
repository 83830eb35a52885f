// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

/*
rbac.go - Casbin-Backed Role Check Policy

The rbac policy delegates the role question to a Casbin enforcer: may
<role> perform <action> on <controller>? The ACL decides WHERE the check
runs; Casbin decides WHO may pass it. Roles arrive from an upstream
isAuthenticated policy via the request Meta map; unauthenticated requests
are checked as the configured default role rather than rejected outright,
so a deployment can grant anonymous access per controller in the Casbin
policy file.
*/

package policies

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/gatehouse/gatehouse/internal/policy"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// EnforcerConfig holds configuration for the Casbin enforcer behind the
// rbac policy.
type EnforcerConfig struct {
	// ModelPath points at a Casbin model file. Empty uses the embedded
	// controller/action model.
	ModelPath string

	// PolicyPath points at a Casbin policy CSV. Empty uses the embedded
	// defaults.
	PolicyPath string

	// DefaultRole is checked for requests with no authenticated subject.
	DefaultRole string
}

// DefaultEnforcerConfig returns the zero-configuration setup: embedded
// model and policy, anonymous default role.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{DefaultRole: "anonymous"}
}

// NewEnforcer builds a synced Casbin enforcer from cfg.
func NewEnforcer(cfg *EnforcerConfig) (*casbin.SyncedEnforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	var m model.Model
	var err error
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		adapter := fileadapter.NewAdapter(cfg.PolicyPath)
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return enforcer, nil
}

// loadEmbeddedPolicy parses and loads the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policyCSV string) error {
	for _, line := range strings.Split(policyCSV, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch ptype, rule := parts[0], parts[1:]; ptype {
		case "p":
			if len(rule) >= 3 {
				if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", rule, err)
				}
			}
		case "g":
			if len(rule) >= 2 {
				if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
				}
			}
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RBAC returns the rbac policy over the given enforcer. defaultRole is used
// when no upstream policy authenticated the request.
//
// Enforcer failure is Errored, never Denied: an unreachable or broken
// policy store must surface as a 500-class fault, not masquerade as an
// authorization decision.
func RBAC(enforcer casbin.IEnforcer, defaultRole string) policy.Func {
	return func(_ context.Context, req *policy.Request, next policy.Next) {
		role := defaultRole
		if r, ok := req.Meta[MetaRole].(string); ok && r != "" {
			role = r
		}

		allowed, err := enforcer.Enforce(role, req.Controller, req.Action)
		if err != nil {
			next(policy.Errored(fmt.Errorf("casbin enforce: %w", err)))
			return
		}
		if !allowed {
			next(policy.Deny(fmt.Sprintf("role %q may not %s on %s", role, req.Action, req.Controller)))
			return
		}
		next(policy.Proceed())
	}
}
