// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package idp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
)

const identityJSON = `{
  "id": "user_01",
  "schema_id": "default",
  "schema_url": "http://localhost/schemas/default",
  "state": "active",
  "traits": {"email": "ada@example.com", "name": {"first": "Ada", "last": "Lovelace"}}
}`

const organizationJSON = `{
  "organization": {
    "id": "org_01",
    "label": "Analytical Engines",
    "domains": ["engines.example.com"],
    "project_id": "proj_01",
    "created_at": "2026-01-01T00:00:00Z",
    "updated_at": "2026-01-01T00:00:00Z"
  }
}`

func newTestClient(t *testing.T) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/identities/user_01", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(identityJSON))
	})
	mux.HandleFunc("/projects/proj_01/organizations/org_01", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(organizationJSON))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	logger := logging.NewNoopLogger()

	return NewClient(srv.URL, "token", "proj_01", tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func TestClientGetUser(t *testing.T) {
	c := newTestClient(t)

	u, err := c.GetUser(context.Background(), "user_01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if u.ExternalID != "user_01" || u.Email != "ada@example.com" || u.FirstName != "Ada" || u.LastName != "Lovelace" {
		t.Errorf("unexpected user %+v", u)
	}

	if u.HasTenant() {
		t.Errorf("fetched user must not carry a tenant")
	}
}

func TestClientGetUserNotFound(t *testing.T) {
	c := newTestClient(t)

	_, err := c.GetUser(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientGetOrganization(t *testing.T) {
	c := newTestClient(t)

	tenant, err := c.GetOrganization(context.Background(), "org_01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tenant.ExternalID != "org_01" || tenant.Name != "Analytical Engines" || tenant.Domain != "engines.example.com" {
		t.Errorf("unexpected tenant %+v", tenant)
	}
}

func TestUserFromTraits(t *testing.T) {
	tests := []struct {
		name   string
		traits any
		first  string
		last   string
		email  string
	}{
		{
			name:   "structured name",
			traits: map[string]any{"email": "a@b.c", "name": map[string]any{"first": "Grace", "last": "Hopper"}},
			first:  "Grace",
			last:   "Hopper",
			email:  "a@b.c",
		},
		{
			name:   "flat name",
			traits: map[string]any{"email": "a@b.c", "name": "Alan Mathison Turing"},
			first:  "Alan",
			last:   "Mathison Turing",
			email:  "a@b.c",
		},
		{
			name:   "no name",
			traits: map[string]any{"email": "a@b.c"},
			email:  "a@b.c",
		},
		{
			name:   "unexpected traits",
			traits: "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := UserFromTraits("ext", tt.traits)

			if u.ExternalID != "ext" || u.FirstName != tt.first || u.LastName != tt.last || u.Email != tt.email {
				t.Errorf("unexpected user %+v", u)
			}
		})
	}
}
