// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package policies

import (
	"context"
	"net"

	"github.com/gatehouse/gatehouse/internal/guard"
	"github.com/gatehouse/gatehouse/internal/policy"
)

// IsLocal returns the isLocal policy: it allows only requests whose peer
// address is a loopback interface. Useful for debug and admin actions that
// must never be reachable from outside the host.
func IsLocal() policy.Func {
	return func(_ context.Context, req *policy.Request, next policy.Next) {
		r, ok := guard.HTTPRequest(req)
		if !ok {
			next(policy.Errored(errNotHTTP))
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RemoteAddr without a port, e.g. a unix socket peer.
			host = r.RemoteAddr
		}

		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			next(policy.Deny("peer is not loopback"))
			return
		}
		next(policy.Proceed())
	}
}
