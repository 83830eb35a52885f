// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package policy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal counts terminal chain outcomes by identity and kind.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_decisions_total",
			Help: "Total number of terminal policy chain outcomes",
		},
		[]string{"controller", "action", "outcome"},
	)

	// DeniedTotal tracks denials separately for alerting.
	DeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_denied_total",
			Help: "Total number of denied requests (for alerting)",
		},
		[]string{"controller", "action"},
	)

	// ChainDuration tracks end-to-end chain execution latency.
	ChainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gatehouse_chain_duration_seconds",
			Help: "Duration of policy chain execution in seconds",
			// Chains are usually in-memory checks; buckets span
			// microseconds up to slow external lookups.
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
		},
		[]string{"outcome"},
	)

	// ChainErrorsTotal counts chains terminated by an unexpected policy
	// failure, kept distinct from denials.
	ChainErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_chain_errors_total",
			Help: "Total number of chains terminated by a policy error",
		},
		[]string{"controller", "action"},
	)
)

// recordDecision records metrics for one terminal outcome.
func recordDecision(req *Request, out Outcome, duration time.Duration) {
	kind := out.Kind.String()
	DecisionsTotal.WithLabelValues(req.Controller, req.Action, kind).Inc()
	ChainDuration.WithLabelValues(kind).Observe(duration.Seconds())

	switch out.Kind {
	case KindDenied:
		DeniedTotal.WithLabelValues(req.Controller, req.Action).Inc()
	case KindErrored:
		ChainErrorsTotal.WithLabelValues(req.Controller, req.Action).Inc()
	}
}
