// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

// Package policy provides the policy registry and the sequential chain
// executor at the heart of Gatehouse.
//
// A policy is a reusable authorization check with a continuation-passing
// contract: it receives the request identity plus a Next handle, and signals
// exactly one of three things through it:
//
//   - next(Proceed())          -> hand control to the next policy in the chain
//   - next(Deny(...)) etc.     -> terminate the chain with a response outcome
//   - next(Errored(err))       -> terminate the chain with an unexpected failure
//
// # Chain Execution
//
// The Executor runs a resolved chain strictly in order. The first policy that
// signals anything other than Proceed short-circuits the chain; later policies
// and the target handler never run. If every policy proceeds, the terminal
// outcome is Proceed and the dispatcher invokes the original handler exactly
// once.
//
//	exec := policy.NewExecutor()
//	out := exec.Execute(ctx, chain, &policy.Request{
//	    Controller: "ProfileController",
//	    Action:     "edit",
//	})
//	switch out.Kind {
//	case policy.KindProceed:    // run the handler
//	case policy.KindDenied:     // 403
//	case policy.KindRedirected: // 302 to out.Location
//	case policy.KindErrored:    // 500, out.Err holds the cause
//	}
//
// # Asynchronous Policies
//
// A policy may complete asynchronously: the Next handle can be called from a
// goroutine or completion callback after the policy function has returned. The
// executor blocks until the handle fires, so synchronous return never implies
// the chain is finished. Only the first call to Next counts; extra calls are
// no-ops. A policy that never calls its handle and never panics leaves the
// request hung - that is a documented caller responsibility, not something the
// engine detects.
//
// # Registry
//
// The Registry maps policy names to functions. The two built-ins "true"
// (allow-all) and "false" (deny-all) are pre-registered and reserved; user
// registration under either name fails with ErrReservedName. Re-registering
// any other name fails with ErrDuplicatePolicy - bindings are write-once by
// design so an ACL audit reads the same at runtime as at startup.
//
// # Thread Safety
//
// Registration happens at process startup. After that both the Registry and
// compiled chains are read-only and safe for unsynchronized concurrent use;
// chains for different requests run concurrently while each individual chain
// stays strictly sequential.
//
// # See Also
//
//   - internal/acl: resolves (controller, action) to an ordered chain
//   - internal/dispatch: maps terminal outcomes to HTTP responses
package policy
