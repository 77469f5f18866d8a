// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
)

const testIssuer = "https://auth.learn.example"

// signToken builds an RS256 compact JWT
func signToken(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()

	enc := base64.RawURLEncoding

	header, err := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	signingInput := enc.EncodeToString(header) + "." + enc.EncodeToString(payload)
	digest := sha256.Sum256([]byte(signingInput))

	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)

	return signingInput + "." + enc.EncodeToString(sig)
}

func TestJWTVerifier_VerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	provider := &jwksProvider{
		issuer: testIssuer,
		keySet: &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
	}

	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name            string
		allowedSubjects []string
		requiredScope   string
		claims          map[string]any
		expected        *Principal
	}{
		{
			name:          "learner with scope string",
			requiredScope: "learning",
			claims:        map[string]any{"iss": testIssuer, "sub": "kratos-1", "exp": exp, "scope": "openid learning", "tenant_id": "local-t1"},
			expected:      &Principal{Subject: "kratos-1", TenantID: "local-t1"},
		},
		{
			name:          "learner with scp array",
			requiredScope: "learning",
			claims:        map[string]any{"iss": testIssuer, "sub": "kratos-2", "exp": exp, "scp": []string{"learning"}},
			expected:      &Principal{Subject: "kratos-2"},
		},
		{
			name:            "allowed service account",
			allowedSubjects: []string{"reporting"},
			requiredScope:   "learning",
			claims:          map[string]any{"iss": testIssuer, "sub": "reporting", "exp": exp},
			expected:        &Principal{Subject: "reporting", Service: true},
		},
		{
			name:          "missing scope",
			requiredScope: "learning",
			claims:        map[string]any{"iss": testIssuer, "sub": "kratos-1", "exp": exp, "scope": "openid"},
		},
		{
			name:   "no access policy",
			claims: map[string]any{"iss": testIssuer, "sub": "kratos-1", "exp": exp, "scope": "learning"},
		},
		{
			name:          "foreign issuer",
			requiredScope: "learning",
			claims:        map[string]any{"iss": "https://evil.example", "sub": "kratos-1", "exp": exp, "scope": "learning"},
		},
		{
			name:          "expired",
			requiredScope: "learning",
			claims:        map[string]any{"iss": testIssuer, "sub": "kratos-1", "exp": time.Now().Add(-time.Hour).Unix(), "scope": "learning"},
		},
	}

	logger := logging.NewNoopLogger()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewJWTVerifier(provider, tt.allowedSubjects, tt.requiredScope, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

			principal, err := v.VerifyToken(context.Background(), signToken(t, key, tt.claims))

			if tt.expected == nil {
				assert.Error(t, err)
				assert.Nil(t, principal)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, principal)
		})
	}
}

func TestNewJWTAuthenticatorRequiresIssuer(t *testing.T) {
	logger := logging.NewNoopLogger()

	_, err := NewJWTAuthenticator(context.Background(), "", "", nil, "learning", tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	assert.Error(t, err)

	v, err := NewJWTAuthenticator(context.Background(), testIssuer, testIssuer+"/.well-known/jwks.json", nil, "learning", tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	require.NoError(t, err)
	assert.NotNil(t, v)
}
