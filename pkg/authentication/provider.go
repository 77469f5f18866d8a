// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	otelHTTPClient = http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
)

// jwksProvider verifies tokens against a fixed key set, skipping discovery
type jwksProvider struct {
	issuer string
	keySet oidc.KeySet
}

func (p *jwksProvider) Verifier(config *oidc.Config) *oidc.IDTokenVerifier {
	return oidc.NewVerifier(p.issuer, p.keySet, config)
}

// NewProvider uses the JWKS URL when one is given, the issuer discovery document otherwise
func NewProvider(ctx context.Context, issuer, jwksURL string) (ProviderInterface, error) {
	ctx = oidc.ClientContext(ctx, &otelHTTPClient)

	if jwksURL != "" {
		return &jwksProvider{issuer: issuer, keySet: oidc.NewRemoteKeySet(ctx, jwksURL)}, nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %v", err)
	}

	return provider, nil
}
