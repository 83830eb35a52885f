// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

// Package dispatch maps terminal policy chain outcomes onto HTTP responses.
//
// The policy engine produces a closed set of outcomes; this package is the
// consumer side of that contract:
//
//   - Proceed    -> invoke the original handler (exactly once)
//   - Denied     -> 403 with a generic JSON body
//   - Redirected -> 302 to the policy-supplied location
//   - Errored    -> 500 with a generic JSON body; the cause goes to the
//     structured log, never to the client
package dispatch

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/policy"
)

// errorBody is the JSON payload for denied and errored outcomes. It is
// deliberately free of internal detail.
type errorBody struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Error  string `json:"error"`
}

// Dispatcher turns outcomes into HTTP responses. Stateless; one instance
// serves the whole process.
type Dispatcher struct{}

// NewDispatcher returns an outcome dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch sends the response for out, invoking handler only on Proceed.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, r *http.Request, out policy.Outcome, handler http.Handler) {
	switch out.Kind {
	case policy.KindProceed:
		handler.ServeHTTP(w, r)

	case policy.KindDenied:
		logging.Ctx(r.Context()).Info().
			Str("path", r.URL.Path).
			Str("reason", out.Reason).
			Msg("Request denied by policy")
		respondJSON(w, http.StatusForbidden, errorBody{
			Status: "error",
			Code:   "FORBIDDEN",
			Error:  "access denied",
		})

	case policy.KindRedirected:
		http.Redirect(w, r, out.Location, http.StatusFound)

	case policy.KindErrored:
		logging.Ctx(r.Context()).Error().
			Err(out.Err).
			Str("path", r.URL.Path).
			Msg("Policy chain failed")
		respondJSON(w, http.StatusInternalServerError, errorBody{
			Status: "error",
			Code:   "INTERNAL_ERROR",
			Error:  "internal server error",
		})

	default:
		// Unreachable with a well-formed executor; treat like an error
		// rather than letting the request through.
		logging.Error().Int("kind", int(out.Kind)).Msg("Unknown policy outcome")
		respondJSON(w, http.StatusInternalServerError, errorBody{
			Status: "error",
			Code:   "INTERNAL_ERROR",
			Error:  "internal server error",
		})
	}
}

// respondJSON writes a JSON body with proper headers.
func respondJSON(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
