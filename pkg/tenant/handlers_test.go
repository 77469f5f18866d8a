// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/internal/types"
	"github.com/canonical/learning-service/pkg/authentication"
)

func TestAPI(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		userID         string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name:   "my tenants",
			path:   "/api/tenants",
			userID: "kratos-1",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().ListMyTenants(gomock.Any(), "kratos-1").Return([]*Tenant{{ID: "local-t1", Name: "Springfield High"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "my tenants unauthenticated",
			path:           "/api/tenants",
			setupMocks:     func(s *MockServiceInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "my tenants failure",
			path:   "/api/tenants",
			userID: "kratos-1",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().ListMyTenants(gomock.Any(), "kratos-1").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:   "roster",
			path:   "/api/tenants/local-t1/users?page_size=2&page_token=Mg==",
			userID: "kratos-admin",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().ListTenantUsers(gomock.Any(), "kratos-admin", "local-t1", "Mg==", 2).
					Return(&MembersPage{Members: []*types.TenantMember{{UserID: "local-u1"}}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "roster with bad page size",
			path:           "/api/tenants/local-t1/users?page_size=ten",
			userID:         "kratos-admin",
			setupMocks:     func(s *MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "roster with bad page token",
			path:   "/api/tenants/local-t1/users?page_token=zzz",
			userID: "kratos-admin",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().ListTenantUsers(gomock.Any(), "kratos-admin", "local-t1", "zzz", 0).Return(nil, ErrInvalidPageToken)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "roster forbidden",
			path:   "/api/tenants/local-t1/users",
			userID: "kratos-student",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().ListTenantUsers(gomock.Any(), "kratos-student", "local-t1", "", 0).Return(nil, ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "roster of a deleted tenant",
			path:   "/api/tenants/local-t1/users",
			userID: "kratos-admin",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().ListTenantUsers(gomock.Any(), "kratos-admin", "local-t1", "", 0).Return(nil, ErrTenantNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "roster failure",
			path:   "/api/tenants/local-t1/users",
			userID: "kratos-admin",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().ListTenantUsers(gomock.Any(), "kratos-admin", "local-t1", "", 0).Return(nil, errors.New("openfga unavailable"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			tt.setupMocks(mockService)

			router := chi.NewMux()
			NewAPI(mockService, tracing.NewNoopTracer(), logging.NewNoopLogger()).RegisterEndpoints(router)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.userID != "" {
				req = req.WithContext(authentication.WithUserID(context.Background(), tt.userID))
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json body: %v", err)
			}

			if body["success"] != (tt.expectedStatus == http.StatusOK) {
				t.Errorf("unexpected success flag in %v", body)
			}
		})
	}
}
