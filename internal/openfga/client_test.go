// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
)

const (
	testStoreID = "01GXSA8YR785C4FYS3C0RTG7B1"
	testModelID = "01GXSBM5PVYHCJNRNKXMB4QZTW"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}

	logger := logging.NewNoopLogger()
	cfg := NewConfig(u.Scheme, u.Host, testStoreID, "secret", testModelID, false, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

	return NewClient(cfg)
}

func TestClientCheck(t *testing.T) {
	tests := []struct {
		name    string
		allowed bool
	}{
		{name: "allowed", allowed: true},
		{name: "denied", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/stores/"+testStoreID+"/check") {
					t.Errorf("unexpected path %s", r.URL.Path)
				}

				if got := r.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("expected bearer token, got %q", got)
				}

				_ = json.NewDecoder(r.Body).Decode(&body)

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{"allowed": tt.allowed})
			})

			allowed, err := c.Check(context.Background(), "user:u1", "can_view", "tenant:t1", *NewTuple("user:u2", "member", "tenant:t1"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if allowed != tt.allowed {
				t.Errorf("expected %v, got %v", tt.allowed, allowed)
			}

			key, _ := body["tuple_key"].(map[string]any)
			if key["user"] != "user:u1" || key["relation"] != "can_view" || key["object"] != "tenant:t1" {
				t.Errorf("unexpected tuple key %v", key)
			}

			if _, ok := body["contextual_tuples"]; !ok {
				t.Errorf("expected contextual tuples in request")
			}
		})
	}
}

func TestClientCheckError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"validation_error","message":"invalid relation"}`))
	})

	if _, err := c.Check(context.Background(), "user:u1", "nope", "tenant:t1"); err == nil {
		t.Fatal("expected error but got none")
	}
}

func TestTupleValues(t *testing.T) {
	u, r, o := NewTuple("user:u1", "admin", "tenant:t1").Values()

	if u != "user:u1" || r != "admin" || o != "tenant:t1" {
		t.Errorf("unexpected values %s %s %s", u, r, o)
	}
}
