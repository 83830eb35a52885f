// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package policy

import (
	"context"
	"errors"
	"testing"
)

// noopPolicy is a registrable placeholder that always proceeds.
func noopPolicy(_ context.Context, _ *Request, next Next) {
	next(Proceed())
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name       string
		policyName string
		fn         Func
		setup      func(r *Registry)
		wantErr    error
	}{
		{
			name:       "registers new policy",
			policyName: "isLoggedIn",
			fn:         noopPolicy,
			wantErr:    nil,
		},
		{
			name:       "rejects duplicate name",
			policyName: "isLoggedIn",
			fn:         noopPolicy,
			setup: func(r *Registry) {
				if err := r.Register("isLoggedIn", noopPolicy); err != nil {
					t.Fatalf("setup registration failed: %v", err)
				}
			},
			wantErr: ErrDuplicatePolicy,
		},
		{
			name:       "rejects reserved name true",
			policyName: "true",
			fn:         noopPolicy,
			wantErr:    ErrReservedName,
		},
		{
			name:       "rejects reserved name false",
			policyName: "false",
			fn:         noopPolicy,
			wantErr:    ErrReservedName,
		},
		{
			name:       "rejects empty name",
			policyName: "",
			fn:         noopPolicy,
			wantErr:    ErrEmptyName,
		},
		{
			name:       "rejects nil function",
			policyName: "broken",
			fn:         nil,
			wantErr:    ErrNilPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if tt.setup != nil {
				tt.setup(r)
			}

			err := r.Register(tt.policyName, tt.fn)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register(%q) error = %v, want %v", tt.policyName, err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("isLoggedIn", noopPolicy); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name       string
		policyName string
		wantErr    error
	}{
		{name: "resolves registered policy", policyName: "isLoggedIn"},
		{name: "resolves builtin true", policyName: BuiltinAllow},
		{name: "resolves builtin false", policyName: BuiltinDeny},
		{name: "unknown name fails", policyName: "isAdmin", wantErr: ErrUnknownPolicy},
		{name: "empty name fails", policyName: "", wantErr: ErrUnknownPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := r.Resolve(tt.policyName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve(%q) error = %v, want %v", tt.policyName, err, tt.wantErr)
			}
			if tt.wantErr == nil && fn == nil {
				t.Errorf("Resolve(%q) returned nil function", tt.policyName)
			}
		})
	}
}

func TestRegistry_BuiltinsAreImmutable(t *testing.T) {
	r := NewRegistry()

	// A failed registration must not disturb the built-in binding.
	if err := r.Register(BuiltinAllow, DenyAll()); !errors.Is(err, ErrReservedName) {
		t.Fatalf("Register(true) error = %v, want ErrReservedName", err)
	}

	fn, err := r.Resolve(BuiltinAllow)
	if err != nil {
		t.Fatalf("Resolve(true) failed: %v", err)
	}

	out := runPolicy(t, fn)
	if out.Kind != KindProceed {
		t.Errorf("builtin true outcome = %v, want proceed", out.Kind)
	}
}

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	allow, err := r.Resolve(BuiltinAllow)
	if err != nil {
		t.Fatalf("Resolve(true) failed: %v", err)
	}
	if out := runPolicy(t, allow); out.Kind != KindProceed {
		t.Errorf("allow-all outcome = %v, want proceed", out.Kind)
	}

	deny, err := r.Resolve(BuiltinDeny)
	if err != nil {
		t.Fatalf("Resolve(false) failed: %v", err)
	}
	if out := runPolicy(t, deny); out.Kind != KindDenied {
		t.Errorf("deny-all outcome = %v, want denied", out.Kind)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("isLoggedIn", noopPolicy); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("canWrite", noopPolicy); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := r.Names()
	want := []string{"canWrite", "false", "isLoggedIn", "true"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// runPolicy invokes a single policy synchronously and returns its outcome.
func runPolicy(t *testing.T, fn Func) Outcome {
	t.Helper()
	done := make(chan Outcome, 1)
	fn(context.Background(), NewRequest("TestController", "index"), func(out Outcome) {
		done <- out
	})
	select {
	case out := <-done:
		return out
	default:
		t.Fatal("policy did not signal its continuation synchronously")
		return Outcome{}
	}
}
