// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

package policies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gatehouse/gatehouse/internal/guard"
	"github.com/gatehouse/gatehouse/internal/policy"
)

// Claims is the JWT claim set isAuthenticated verifies.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// errNotHTTP reports a policy invoked outside the HTTP binding.
var errNotHTTP = errors.New("policy requires an HTTP request in Meta")

// IsAuthenticated returns the isAuthenticated policy: it requires a valid
// Bearer token signed with secret (HMAC-SHA256) and records the verified
// subject and role in the request Meta map for downstream policies.
//
// A missing or invalid token is a denial, not an error: the request was
// understood and refused. Only a misconfigured binding produces Errored.
func IsAuthenticated(secret []byte) policy.Func {
	return func(_ context.Context, req *policy.Request, next policy.Next) {
		r, ok := guard.HTTPRequest(req)
		if !ok {
			next(policy.Errored(errNotHTTP))
			return
		}

		tokenString, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next(policy.Deny("missing bearer token"))
			return
		}

		claims, err := validateToken(tokenString, secret)
		if err != nil {
			next(policy.Deny(fmt.Sprintf("invalid token: %v", err)))
			return
		}

		req.Meta[MetaSubject] = claims.Subject
		req.Meta[MetaRole] = claims.Role
		req.Meta[MetaClaims] = claims
		next(policy.Proceed())
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// validateToken parses and verifies an HMAC-signed token.
func validateToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
