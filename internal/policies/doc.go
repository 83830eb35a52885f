// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

// Package policies ships the stock policy functions Gatehouse registers out
// of the box. They are ordinary policy.Func values - applications register
// their own the same way - and exist both as useful defaults and as worked
// examples of the policy contract:
//
//   - isAuthenticated: verifies a Bearer JWT (HMAC-SHA256) and stashes the
//     subject and role in the request Meta map for downstream policies
//   - isLocal: allows only loopback peers
//   - rbac: asks a Casbin enforcer whether the request's role may perform
//     (controller, action), falling back to a configured anonymous role
//
// The intended chain order mirrors the classic pipeline: authentication
// first, then authorization:
//
//	acl:
//	  AdminController:
//	    "*": [isAuthenticated, rbac]
package policies

// Meta keys written by isAuthenticated and read by rbac. Exported so
// application policies can participate in the same flow.
const (
	// MetaSubject is the verified subject identifier.
	MetaSubject = "auth.subject"

	// MetaRole is the verified subject's role claim.
	MetaRole = "auth.role"

	// MetaClaims is the full verified claim set (*Claims).
	MetaClaims = "auth.claims"
)
