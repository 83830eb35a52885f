// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package policy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Reserved names for the two built-in constant policies. They match the
// boolean literals accepted in ACL configuration, so `edit: true` and
// `edit: "true"` resolve to the same function.
const (
	// BuiltinAllow is the pre-registered allow-all policy.
	BuiltinAllow = "true"

	// BuiltinDeny is the pre-registered deny-all policy.
	BuiltinDeny = "false"
)

// Registry errors.
var (
	// ErrUnknownPolicy is returned when a name was never registered.
	ErrUnknownPolicy = errors.New("unknown policy")

	// ErrDuplicatePolicy is returned when a name is already bound.
	// Bindings are write-once; the registry never silently rebinds.
	ErrDuplicatePolicy = errors.New("policy already registered")

	// ErrReservedName is returned when registering under "true" or "false".
	ErrReservedName = errors.New("policy name is reserved")

	// ErrNilPolicy is returned when registering a nil function.
	ErrNilPolicy = errors.New("policy function is nil")

	// ErrEmptyName is returned when registering under an empty name.
	ErrEmptyName = errors.New("policy name is empty")
)

// Registry maps policy names to functions. Populate it at process startup,
// then treat it as read-only; Resolve is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns a registry with the built-in constant policies
// pre-registered under "true" and "false".
func NewRegistry() *Registry {
	return &Registry{
		funcs: map[string]Func{
			BuiltinAllow: AllowAll(),
			BuiltinDeny:  DenyAll(),
		},
	}
}

// Register binds name to fn.
//
// Returns:
//   - ErrReservedName if name is "true" or "false"
//   - ErrDuplicatePolicy if name is already bound
//   - ErrEmptyName / ErrNilPolicy on degenerate arguments
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return ErrEmptyName
	}
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilPolicy, name)
	}
	if name == BuiltinAllow || name == BuiltinDeny {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePolicy, name)
	}
	r.funcs[name] = fn
	return nil
}

// MustRegister is Register that panics on error. Intended for startup wiring
// where a bad registration is a programming mistake.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Resolve returns the function bound to name, or ErrUnknownPolicy.
func (r *Registry) Resolve(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return fn, nil
}

// Names returns every registered name, built-ins included, sorted for
// deterministic output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllowAll returns the built-in policy that always proceeds.
func AllowAll() Func {
	return func(_ context.Context, _ *Request, next Next) {
		next(Proceed())
	}
}

// DenyAll returns the built-in policy that always denies.
func DenyAll() Func {
	return func(_ context.Context, _ *Request, next Next) {
		next(Deny("denied by policy"))
	}
}
