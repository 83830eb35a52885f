// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

/*
table.go - Compiled ACL Lookup Table

Compile expands every specification in the parsed ACL through the policy
registry once, at startup. The result is an immutable table mapping each
configured scope to its ordered []policy.Func chain. Request-time lookup is
two map reads and allocates nothing, and repeated lookups return the same
slice - resolution is idempotent down to referential equality.

Static validation happens here: every named policy must resolve against the
registry or Compile fails, so a misspelled policy name is a startup crash
rather than a silent allow.
*/

package acl

import (
	"fmt"

	"github.com/gatehouse/gatehouse/internal/policy"
)

// Table is the compiled controller×action → chain lookup. Immutable after
// Compile; safe for unsynchronized concurrent reads.
type Table struct {
	global     []policy.Func
	controller map[string][]policy.Func
	action     map[string]map[string][]policy.Func
}

// Compile expands cfg against reg into a Table.
//
// Returns:
//   - policy.ErrUnknownPolicy (wrapped, with the offending scope) when the
//     ACL references a name that was never registered
//   - ErrInvalidSpec (wrapped) for specification shapes the parser could not
//     have produced, e.g. a hand-built nested sequence
func Compile(cfg *Config, reg *policy.Registry) (*Table, error) {
	t := &Table{
		controller: make(map[string][]policy.Func, len(cfg.ControllerDefault)),
		action:     make(map[string]map[string][]policy.Func, len(cfg.ActionOverride)),
	}

	globalSpec := Allow()
	if cfg.GlobalDefault != nil {
		globalSpec = *cfg.GlobalDefault
	}
	chain, err := Expand(globalSpec, reg)
	if err != nil {
		return nil, fmt.Errorf("global default: %w", err)
	}
	t.global = chain

	for controller, spec := range cfg.ControllerDefault {
		chain, err := Expand(spec, reg)
		if err != nil {
			return nil, fmt.Errorf("controller %q default: %w", controller, err)
		}
		t.controller[controller] = chain
	}

	for controller, actions := range cfg.ActionOverride {
		t.action[controller] = make(map[string][]policy.Func, len(actions))
		for action, spec := range actions {
			chain, err := Expand(spec, reg)
			if err != nil {
				return nil, fmt.Errorf("controller %q, action %q: %w", controller, action, err)
			}
			t.action[controller][action] = chain
		}
	}

	return t, nil
}

// Chain returns the ordered policy chain for (controller, action), following
// the same single-layer precedence as Config.Effective.
func (t *Table) Chain(controller, action string) []policy.Func {
	if actions, ok := t.action[controller]; ok {
		if chain, ok := actions[action]; ok {
			return chain
		}
	}
	if chain, ok := t.controller[controller]; ok {
		return chain
	}
	return t.global
}

// Expand converts a specification into its ordered policy chain via the
// registry. A sequence expands to the concatenation of its elements'
// expansions, in the literal configured order.
func Expand(spec Spec, reg *policy.Registry) ([]policy.Func, error) {
	switch spec.Kind {
	case SpecAllow:
		fn, err := reg.Resolve(policy.BuiltinAllow)
		if err != nil {
			return nil, err
		}
		return []policy.Func{fn}, nil

	case SpecDeny:
		fn, err := reg.Resolve(policy.BuiltinDeny)
		if err != nil {
			return nil, err
		}
		return []policy.Func{fn}, nil

	case SpecNamed:
		fn, err := reg.Resolve(spec.Name)
		if err != nil {
			return nil, err
		}
		return []policy.Func{fn}, nil

	case SpecSequence:
		if len(spec.Seq) == 0 {
			return nil, fmt.Errorf("%w: empty sequence", ErrInvalidSpec)
		}
		chain := make([]policy.Func, 0, len(spec.Seq))
		for i, elem := range spec.Seq {
			if elem.Kind == SpecSequence {
				return nil, fmt.Errorf("%w: nested sequence at index %d", ErrInvalidSpec, i)
			}
			expanded, err := Expand(elem, reg)
			if err != nil {
				return nil, fmt.Errorf("sequence element %d: %w", i, err)
			}
			chain = append(chain, expanded...)
		}
		return chain, nil

	default:
		return nil, fmt.Errorf("%w: unknown spec kind %d", ErrInvalidSpec, spec.Kind)
	}
}
