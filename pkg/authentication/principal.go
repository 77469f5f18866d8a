// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

// Principal is the authenticated caller of a request
type Principal struct {
	// Subject is the identity provider id of the caller
	Subject string
	// TenantID is the tenant claim added by the token hook, empty for callers without a tenant
	TenantID string
	// Service is set for client credentials callers admitted by subject
	Service bool
}

type contextKey struct{}

var principalContextKey = contextKey{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func GetPrincipal(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok && p != nil
}

// WithUserID stores a principal made only of its subject
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithPrincipal(ctx, &Principal{Subject: userID})
}

// GetUserID returns the identity provider id of the caller, false when the request
// carries no principal
func GetUserID(ctx context.Context) (string, bool) {
	p, ok := GetPrincipal(ctx)
	if !ok || p.Subject == "" {
		return "", false
	}

	return p.Subject, true
}
