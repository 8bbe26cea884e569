// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"slices"
)

type contextKey struct{}

var principalContextKey = contextKey{}

// Principal is the authenticated caller of a request.
// Authorities come from the access token and are not reloaded for its lifetime.
type Principal struct {
	UserID      string
	Username    string
	TenantID    string
	Authorities []string
}

func (p *Principal) HasAuthority(authority string) bool {
	return slices.Contains(p.Authorities, authority)
}

// WithPrincipal returns a new context carrying p derived from the parent context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the authenticated principal, nil for anonymous requests
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey).(*Principal)
	return p
}
