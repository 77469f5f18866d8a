// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
)

const apiAccessResource = "learning_api_access"

type claims struct {
	Subject  string   `json:"sub"`
	Scope    string   `json:"scope"`
	Scopes   []string `json:"scp"`
	TenantID string   `json:"tenant_id"`
}

func (c *claims) hasScope(scope string) bool {
	return slices.Contains(strings.Fields(c.Scope), scope) || slices.Contains(c.Scopes, scope)
}

// JWTVerifier admits service accounts listed in allowedSubjects and any
// token carrying requiredScope
type JWTVerifier struct {
	verifier        *oidc.IDTokenVerifier
	allowedSubjects []string
	requiredScope   string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (*Principal, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	c := new(claims)
	if err := token.Claims(c); err != nil {
		v.logger.Debugf("Failed to extract claims: %v", err)
		return nil, err
	}

	if slices.Contains(v.allowedSubjects, c.Subject) {
		return &Principal{Subject: c.Subject, Service: true}, nil
	}

	if v.requiredScope != "" && c.hasScope(v.requiredScope) {
		return &Principal{Subject: c.Subject, TenantID: c.TenantID}, nil
	}

	v.logger.Security().AuthzFailure(c.Subject, apiAccessResource)

	if len(v.allowedSubjects) == 0 && v.requiredScope == "" {
		return nil, fmt.Errorf("unauthorized: no access policy configured")
	}

	return nil, fmt.Errorf("unauthorized: missing required scope or subject not allowed")
}

func NewJWTVerifier(
	provider ProviderInterface,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	v := &JWTVerifier{
		allowedSubjects: allowedSubjects,
		requiredScope:   requiredScope,
		tracer:          tracer,
		monitor:         monitor,
		logger:          logger,
	}

	v.verifier = provider.Verifier(&oidc.Config{
		SkipClientIDCheck: true,
		SkipIssuerCheck:   false,
	})

	return v
}

// NewJWTAuthenticator builds a verifier for issuer, keys come from jwksURL when set
func NewJWTAuthenticator(
	ctx context.Context,
	issuer string,
	jwksURL string,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	if issuer == "" {
		return nil, fmt.Errorf("issuer is required for JWT authentication")
	}

	if len(allowedSubjects) == 0 && requiredScope == "" {
		logger.Warn("JWT authentication has neither allowed subjects nor a required scope, every token will be refused")
	}

	provider, err := NewProvider(ctx, issuer, jwksURL)
	if err != nil {
		return nil, err
	}

	if jwksURL != "" {
		logger.Infof("JWT authentication is enabled with JWKS URL %s", jwksURL)
	} else {
		logger.Infof("JWT authentication is enabled with OIDC discovery for %s", issuer)
	}

	return NewJWTVerifier(provider, allowedSubjects, requiredScope, tracer, monitor, logger), nil
}
