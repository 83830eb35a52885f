// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package policy

import "context"

// Request carries the identity and per-request state of one incoming request
// through a policy chain.
type Request struct {
	// Controller is the logical controller name, e.g. "ProfileController".
	Controller string

	// Action is the action name within the controller, e.g. "edit".
	Action string

	// Meta is a scratch map shared by every policy in one chain, created
	// fresh per request by the transport binding. The engine itself never
	// reads or writes it; policies use it to pass data downstream (an
	// authentication policy stashing the verified subject for a later
	// role check, for example).
	Meta map[string]any
}

// NewRequest returns a Request for the given identity with an empty Meta map.
func NewRequest(controller, action string) *Request {
	return &Request{
		Controller: controller,
		Action:     action,
		Meta:       make(map[string]any),
	}
}

// Next is the continuation handle given to each policy. A policy must call it
// exactly once: with Proceed() to pass control to the next policy, or with a
// terminal outcome (Deny, Redirect, Errored) to stop the chain. It may be
// called after the policy function has returned, from a goroutine or
// completion callback. Calls after the first are ignored.
type Next func(Outcome)

// Func is a single policy: one reusable authorization check in a chain.
//
// The contract mirrors classic middleware: inspect the request, then either
// continue (next(Proceed())), terminate with a response outcome, or surface an
// unexpected failure. Failing to call next at all leaves the request hung;
// the engine does not enforce this.
type Func func(ctx context.Context, req *Request, next Next)

// Kind discriminates the closed set of terminal outcome variants.
type Kind int

const (
	// KindProceed means every policy passed; run the original handler.
	KindProceed Kind = iota

	// KindDenied means a policy deliberately refused the request.
	KindDenied

	// KindRedirected means a policy terminated the request with a redirect.
	KindRedirected

	// KindErrored means a policy failed unexpectedly. This is never an
	// authorization decision and must be routed to a generic error path.
	KindErrored
)

// String returns the lowercase name of the outcome kind, suitable for logs
// and metric labels.
func (k Kind) String() string {
	switch k {
	case KindProceed:
		return "proceed"
	case KindDenied:
		return "denied"
	case KindRedirected:
		return "redirected"
	case KindErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a policy chain. It is created fresh per
// request and discarded after dispatch.
type Outcome struct {
	Kind Kind

	// Location is the redirect target when Kind is KindRedirected.
	Location string

	// Reason optionally explains a denial. It is for logging and auditing
	// only and is never sent to clients.
	Reason string

	// Err is the cause when Kind is KindErrored.
	Err error
}

// Proceed signals that the current policy passed and the chain may continue.
func Proceed() Outcome {
	return Outcome{Kind: KindProceed}
}

// Deny terminates the chain with an access-denied outcome. The reason is kept
// server-side.
func Deny(reason string) Outcome {
	return Outcome{Kind: KindDenied, Reason: reason}
}

// Redirect terminates the chain by sending the client to target.
func Redirect(target string) Outcome {
	return Outcome{Kind: KindRedirected, Location: target}
}

// Errored terminates the chain with an unexpected failure. Distinct from
// Deny: it maps to a generic error response, never to a 403.
func Errored(err error) Outcome {
	return Outcome{Kind: KindErrored, Err: err}
}
