// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package policies

import (
	"fmt"

	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/policy"
)

// Options configures the stock policy set.
type Options struct {
	// JWTSecret signs and verifies isAuthenticated tokens.
	JWTSecret []byte

	// Enforcer configures the Casbin enforcer behind rbac. Nil uses the
	// embedded defaults.
	Enforcer *EnforcerConfig
}

// Register installs the stock policies (isAuthenticated, isLocal, rbac)
// into reg under their conventional names.
func Register(reg *policy.Registry, opts Options) error {
	cfg := opts.Enforcer
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}
	enforcer, err := NewEnforcer(cfg)
	if err != nil {
		return fmt.Errorf("stock policies: %w", err)
	}

	if err := reg.Register("isAuthenticated", IsAuthenticated(opts.JWTSecret)); err != nil {
		return err
	}
	if err := reg.Register("isLocal", IsLocal()); err != nil {
		return err
	}
	if err := reg.Register("rbac", RBAC(enforcer, cfg.DefaultRole)); err != nil {
		return err
	}

	logging.Debug().
		Str("default_role", cfg.DefaultRole).
		Msg("Registered stock policies")
	return nil
}
