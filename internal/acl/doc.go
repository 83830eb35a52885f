// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

// Package acl resolves a declarative access control list into ordered policy
// chains.
//
// # Configuration Shape
//
// The ACL is a single document, loaded once at startup under the `acl:` key
// of the configuration file:
//
//	acl:
//	  "*": true                     # global default
//	  ProfileController:
//	    "*": false                  # controller default
//	    edit: isLoggedIn            # action override, single policy
//	  FileController:
//	    upload:                     # action override, ordered chain
//	      - isAuthenticated
//	      - canWrite
//	      - hasEnoughSpace
//
// Values are booleans (the built-in allow/deny constants), strings (named
// policies), or flat arrays of either. Arrays inside arrays are a
// configuration error.
//
// # Precedence
//
// Resolution picks exactly one layer, most specific first:
//
//  1. action override for (controller, action)
//  2. the controller's "*" entry
//  3. the global "*" entry (treated as allow when absent)
//
// Layers never merge or cascade. A controller-level `"*": false` is a total
// override for that controller's unmapped actions - it is not combined with
// the global default in any way. This is the single most common
// misunderstanding of declarative ACLs, and the test suite asserts its
// absence explicitly.
//
// # Compilation
//
// Compile expands every specification through the policy registry into an
// immutable lookup table built once at startup. Every named policy is
// resolved statically at that point, so a typo in the ACL fails process
// initialization instead of silently allowing traffic at request time.
package acl
