// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package acl

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    Spec
		wantErr bool
	}{
		{
			name:  "bool true is allow",
			value: true,
			want:  Allow(),
		},
		{
			name:  "bool false is deny",
			value: false,
			want:  Deny(),
		},
		{
			name:  "string is named policy",
			value: "isLoggedIn",
			want:  Named("isLoggedIn"),
		},
		{
			name:  "string array is sequence",
			value: []any{"isAuthenticated", "canWrite"},
			want:  Spec{Kind: SpecSequence, Seq: []Spec{Named("isAuthenticated"), Named("canWrite")}},
		},
		{
			name:  "typed string slice is sequence",
			value: []string{"isAuthenticated", "canWrite"},
			want:  Spec{Kind: SpecSequence, Seq: []Spec{Named("isAuthenticated"), Named("canWrite")}},
		},
		{
			name:  "mixed array with booleans",
			value: []any{"isLoggedIn", false},
			want:  Spec{Kind: SpecSequence, Seq: []Spec{Named("isLoggedIn"), Deny()}},
		},
		{
			name:    "empty string rejected",
			value:   "",
			wantErr: true,
		},
		{
			name:    "empty array rejected",
			value:   []any{},
			wantErr: true,
		},
		{
			name:    "nested array rejected",
			value:   []any{"isLoggedIn", []any{"canWrite"}},
			wantErr: true,
		},
		{
			name:    "number rejected",
			value:   42,
			wantErr: true,
		},
		{
			name:    "nil rejected",
			value:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSpec(tt.value, false)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpec) {
					t.Fatalf("parseSpec(%v) error = %v, want ErrInvalidSpec", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSpec(%v) failed: %v", tt.value, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSpec(%v) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

func TestSequence(t *testing.T) {
	seq, err := Sequence(Named("isLoggedIn"), Deny())
	if err != nil {
		t.Fatalf("Sequence failed: %v", err)
	}
	if seq.Kind != SpecSequence || len(seq.Seq) != 2 {
		t.Errorf("Sequence = %+v, want two-element sequence", seq)
	}

	if _, err := Sequence(); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("empty Sequence error = %v, want ErrInvalidSpec", err)
	}

	if _, err := Sequence(Named("a"), seq); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("nested Sequence error = %v, want ErrInvalidSpec", err)
	}
}

func TestSpec_String(t *testing.T) {
	tests := []struct {
		spec Spec
		want string
	}{
		{Allow(), "true"},
		{Deny(), "false"},
		{Named("isLoggedIn"), "isLoggedIn"},
		{Spec{Kind: SpecSequence, Seq: []Spec{Named("a"), Deny()}}, "[a, false]"},
	}

	for _, tt := range tests {
		if got := tt.spec.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
