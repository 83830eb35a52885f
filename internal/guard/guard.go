// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

// Package guard binds the policy engine to HTTP routes.
//
// A Guard wraps handlers so that every request first runs its resolved policy
// chain. The (controller, action) identity comes either from explicit route
// registration:
//
//	r.Get("/profile/edit", g.Protect("ProfileController", "edit", editHandler))
//
// or, for convention-routed applications, from chi URL parameters:
//
//	r.Route("/{controller}/{action}", func(r chi.Router) {
//	    r.Use(g.Middleware)
//	    r.Get("/", appHandler)
//	})
//
// Each request gets a fresh policy.Request whose Meta map carries the
// underlying *http.Request for policies that need headers or peer addresses.
package guard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse/gatehouse/internal/acl"
	"github.com/gatehouse/gatehouse/internal/dispatch"
	"github.com/gatehouse/gatehouse/internal/policy"
)

// MetaHTTPRequest is the Meta key under which the HTTP binding stores the
// underlying *http.Request.
const MetaHTTPRequest = "http.request"

// HTTPRequest extracts the underlying *http.Request a policy was invoked
// for. Returns false outside the HTTP binding.
func HTTPRequest(req *policy.Request) (*http.Request, bool) {
	r, ok := req.Meta[MetaHTTPRequest].(*http.Request)
	return r, ok
}

// Guard executes resolved policy chains in front of HTTP handlers.
type Guard struct {
	table      *acl.Table
	exec       *policy.Executor
	dispatcher *dispatch.Dispatcher
}

// New returns a Guard over the compiled ACL table.
func New(table *acl.Table) *Guard {
	return &Guard{
		table:      table,
		exec:       policy.NewExecutor(),
		dispatcher: dispatch.NewDispatcher(),
	}
}

// Protect wraps next behind the chain for an explicit (controller, action)
// identity. The chain is looked up once, at route registration.
func (g *Guard) Protect(controller, action string, next http.HandlerFunc) http.HandlerFunc {
	chain := g.table.Chain(controller, action)
	return func(w http.ResponseWriter, r *http.Request) {
		g.serve(w, r, chain, controller, action, next)
	}
}

// Middleware derives the identity from the chi route parameters
// {controller} and {action} and guards whatever handler the route resolves
// to. Requests outside a parameterized route get empty identity and fall
// through to the global default, which is the correct reading of an ACL
// that never mentions them.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		controller := chi.URLParam(r, "controller")
		action := chi.URLParam(r, "action")
		chain := g.table.Chain(controller, action)
		g.serve(w, r, chain, controller, action, next)
	})
}

// serve runs one request through its chain and dispatches the outcome.
func (g *Guard) serve(w http.ResponseWriter, r *http.Request, chain []policy.Func, controller, action string, next http.Handler) {
	preq := policy.NewRequest(controller, action)
	preq.Meta[MetaHTTPRequest] = r

	out := g.exec.Execute(r.Context(), chain, preq)
	g.dispatcher.Dispatch(w, r, out, next)
}
