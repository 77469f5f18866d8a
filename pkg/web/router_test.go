// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/mock/gomock"

	"github.com/canonical/learning-service/internal/db"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/pkg/authentication"
	"github.com/canonical/learning-service/pkg/progress"
	"github.com/canonical/learning-service/pkg/tenant"
	"github.com/canonical/learning-service/pkg/webhooks"
)

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sqlDB.Close()

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	progressService := progress.NewMockServiceInterface(ctrl)
	progressService.EXPECT().GetUserProgress(gomock.Any(), "kratos-1").Return(&progress.Snapshot{}, nil)

	tenantService := tenant.NewMockServiceInterface(ctrl)
	tenantService.EXPECT().ListMyTenants(gomock.Any(), "kratos-1").Return([]*tenant.Tenant{}, nil)

	mock.ExpectPing()

	router := NewRouter(
		Config{
			DB:                 db.NewDBClientFromSQL(sqlDB, tracer, monitor, logger),
			Progress:           progressService,
			Tenants:            tenantService,
			Webhooks:           webhooks.NewMockServiceInterface(ctrl),
			Dedup:              webhooks.NewMockDedupInterface(ctrl),
			Authenticate:       authentication.NewMiddleware(authentication.NewNoopVerifier(), tracer, monitor, logger).Authenticate(),
			CORSAllowedOrigins: []string{"*"},
		},
		tracer,
		monitor,
		logger,
	)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		header   map[string]string
		expected int
	}{
		{name: "status", method: http.MethodGet, path: "/api/v0/status", expected: http.StatusOK},
		{name: "ready", method: http.MethodGet, path: "/api/v0/ready", expected: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/api/v0/metrics", expected: http.StatusOK},
		{name: "progress requires a token", method: http.MethodGet, path: "/api/progress", expected: http.StatusUnauthorized},
		{
			name:     "progress with token",
			method:   http.MethodGet,
			path:     "/api/progress",
			header:   map[string]string{"Authorization": "Bearer kratos-1"},
			expected: http.StatusOK,
		},
		{
			name:     "tenants with token",
			method:   http.MethodGet,
			path:     "/api/tenants",
			header:   map[string]string{"Authorization": "Bearer kratos-1"},
			expected: http.StatusOK,
		},
		{
			name:     "webhooks skip user authentication",
			method:   http.MethodPost,
			path:     "/api/webhooks/identity",
			body:     `{"id":"evt_1"}`,
			expected: http.StatusBadRequest,
		},
		{name: "unknown route", method: http.MethodGet, path: "/api/unknown", expected: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMiddlewareCORS(t *testing.T) {
	handler := middlewareCORS([]string{"https://learn.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/progress", nil)
	req.Header.Set("Origin", "https://learn.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://learn.example" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}
