// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package acl

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is returned for malformed policy specifications: unsupported
// value types, empty sequences, or sequences nested inside sequences. These
// are load-time errors; a compiled table never produces them per-request.
var ErrInvalidSpec = errors.New("invalid policy specification")

// SpecKind discriminates the policy specification variants.
type SpecKind int

const (
	// SpecAllow is the built-in allow constant (`true` in configuration).
	SpecAllow SpecKind = iota

	// SpecDeny is the built-in deny constant (`false` in configuration).
	SpecDeny

	// SpecNamed references a policy registered under Name.
	SpecNamed

	// SpecSequence is an ordered list of Allow/Deny/Named elements,
	// executed left to right.
	SpecSequence
)

// Spec is one policy specification from the ACL document.
type Spec struct {
	Kind SpecKind

	// Name is set when Kind is SpecNamed.
	Name string

	// Seq is set when Kind is SpecSequence. It is never empty and its
	// elements are never sequences themselves.
	Seq []Spec
}

// Allow returns the built-in allow specification.
func Allow() Spec {
	return Spec{Kind: SpecAllow}
}

// Deny returns the built-in deny specification.
func Deny() Spec {
	return Spec{Kind: SpecDeny}
}

// Named returns a specification referencing a registered policy.
func Named(name string) Spec {
	return Spec{Kind: SpecNamed, Name: name}
}

// Sequence returns an ordered specification over elems.
//
// Returns ErrInvalidSpec when elems is empty or contains a nested sequence.
func Sequence(elems ...Spec) (Spec, error) {
	if len(elems) == 0 {
		return Spec{}, fmt.Errorf("%w: empty sequence", ErrInvalidSpec)
	}
	for i, e := range elems {
		if e.Kind == SpecSequence {
			return Spec{}, fmt.Errorf("%w: nested sequence at index %d", ErrInvalidSpec, i)
		}
	}
	return Spec{Kind: SpecSequence, Seq: elems}, nil
}

// String renders the specification the way it would appear in configuration.
func (s Spec) String() string {
	switch s.Kind {
	case SpecAllow:
		return "true"
	case SpecDeny:
		return "false"
	case SpecNamed:
		return s.Name
	case SpecSequence:
		out := "["
		for i, e := range s.Seq {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	default:
		return "invalid"
	}
}

// parseSpec converts one raw configuration value into a Spec. The nested flag
// is set while parsing sequence elements, where a further sequence is
// rejected.
func parseSpec(v any, nested bool) (Spec, error) {
	switch val := v.(type) {
	case bool:
		if val {
			return Allow(), nil
		}
		return Deny(), nil

	case string:
		if val == "" {
			return Spec{}, fmt.Errorf("%w: empty policy name", ErrInvalidSpec)
		}
		return Named(val), nil

	case []string:
		elems := make([]any, len(val))
		for i, s := range val {
			elems[i] = s
		}
		return parseSequence(elems, nested)

	case []any:
		return parseSequence(val, nested)

	default:
		return Spec{}, fmt.Errorf("%w: unsupported value type %T", ErrInvalidSpec, v)
	}
}

// parseSequence converts a raw array value into a SpecSequence.
func parseSequence(elems []any, nested bool) (Spec, error) {
	if nested {
		return Spec{}, fmt.Errorf("%w: sequences cannot be nested", ErrInvalidSpec)
	}
	if len(elems) == 0 {
		return Spec{}, fmt.Errorf("%w: empty sequence", ErrInvalidSpec)
	}

	seq := make([]Spec, 0, len(elems))
	for i, e := range elems {
		spec, err := parseSpec(e, true)
		if err != nil {
			return Spec{}, fmt.Errorf("sequence element %d: %w", i, err)
		}
		seq = append(seq, spec)
	}
	return Spec{Kind: SpecSequence, Seq: seq}, nil
}
