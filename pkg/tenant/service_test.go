// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/learning-service/internal/authorization"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/storage"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/internal/types"
)

const (
	testTenantID = "0195a0c4-7d2e-7c3a-9f10-5b2d8e4a6c01"
	testUserID   = "0195a0c4-7d2e-7c3a-9f10-5b2d8e4a6c02"
)

//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tenant.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func newTestService(s StorageInterface, a AuthorizerInterface) *Service {
	logger := logging.NewNoopLogger()
	return NewService(s, a, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func members(n int) []*types.TenantMember {
	result := make([]*types.TenantMember, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, &types.TenantMember{UserID: "local-u", Role: "student", Status: "active"})
	}
	return result
}

func TestService_ListMyTenants(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*MockStorageInterface)
		expected   []*Tenant
		wantErr    bool
	}{
		{
			name: "member of two tenants",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-1").Return(&types.User{ID: testUserID}, nil)
				s.EXPECT().ListTenantsByUserID(gomock.Any(), testUserID).Return([]*types.Tenant{
					{ID: testTenantID, ExternalID: "o1", Name: "Springfield High", Domain: "springfield.edu"},
					{ID: "local-t2", ExternalID: "o2", Name: "Shelbyville Prep"},
				}, nil)
			},
			expected: []*Tenant{
				{ID: testTenantID, ExternalID: "o1", Name: "Springfield High", Domain: "springfield.edu"},
				{ID: "local-t2", ExternalID: "o2", Name: "Shelbyville Prep"},
			},
		},
		{
			name: "user not delivered yet",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-1").Return(nil, storage.ErrNotFound)
			},
			expected: []*Tenant{},
		},
		{
			name: "storage failure",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-1").Return(&types.User{ID: testUserID}, nil)
				s.EXPECT().ListTenantsByUserID(gomock.Any(), testUserID).Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			tt.setupMocks(mockStorage)

			tenants, err := newTestService(mockStorage, NewMockAuthorizerInterface(ctrl)).ListMyTenants(context.Background(), "kratos-1")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, tenants)
		})
	}
}

func TestService_ListTenantUsers(t *testing.T) {
	viewer := &types.User{ID: "local-admin"}

	allow := func(s *MockStorageInterface, a *MockAuthorizerInterface) {
		s.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-admin").Return(viewer, nil)
		a.EXPECT().CheckTenantAccess(gomock.Any(), testTenantID, "local-admin", authorization.CAN_VIEW_PERMISSION).Return(true, nil)
		s.EXPECT().GetTenantByID(gomock.Any(), testTenantID).Return(&types.Tenant{ID: testTenantID}, nil)
	}

	tests := []struct {
		name          string
		pageToken     string
		pageSize      int
		setupMocks    func(*MockStorageInterface, *MockAuthorizerInterface)
		expectedLen   int
		expectedToken string
		expected      error
	}{
		{
			name:     "single page",
			pageSize: 10,
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {
				allow(s, a)
				s.EXPECT().ListTenantMembers(gomock.Any(), testTenantID, uint64(11), uint64(0)).Return(members(3), nil)
			},
			expectedLen: 3,
		},
		{
			name:     "more pages",
			pageSize: 2,
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {
				allow(s, a)
				s.EXPECT().ListTenantMembers(gomock.Any(), testTenantID, uint64(3), uint64(0)).Return(members(3), nil)
			},
			expectedLen:   2,
			expectedToken: encodePageToken(2),
		},
		{
			name:      "follows the page token",
			pageToken: encodePageToken(2),
			pageSize:  2,
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {
				allow(s, a)
				s.EXPECT().ListTenantMembers(gomock.Any(), testTenantID, uint64(3), uint64(2)).Return(members(1), nil)
			},
			expectedLen: 1,
		},
		{
			name: "default page size",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {
				allow(s, a)
				s.EXPECT().ListTenantMembers(gomock.Any(), testTenantID, uint64(DefaultPageSize+1), uint64(0)).Return(members(0), nil)
			},
		},
		{
			name:     "page size is capped",
			pageSize: 10000,
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {
				allow(s, a)
				s.EXPECT().ListTenantMembers(gomock.Any(), testTenantID, uint64(MaxPageSize+1), uint64(0)).Return(members(0), nil)
			},
		},
		{
			name:       "bad page token",
			pageToken:  "not base64!",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {},
			expected:   ErrInvalidPageToken,
		},
		{
			name: "viewer without permission",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {
				s.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-admin").Return(viewer, nil)
				a.EXPECT().CheckTenantAccess(gomock.Any(), testTenantID, "local-admin", authorization.CAN_VIEW_PERMISSION).Return(false, nil)
			},
			expected: ErrForbidden,
		},
		{
			name: "unknown viewer",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {
				s.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-admin").Return(nil, storage.ErrNotFound)
			},
			expected: ErrForbidden,
		},
		{
			name: "deleted tenant",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface) {
				s.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-admin").Return(viewer, nil)
				a.EXPECT().CheckTenantAccess(gomock.Any(), testTenantID, "local-admin", authorization.CAN_VIEW_PERMISSION).Return(true, nil)
				s.EXPECT().GetTenantByID(gomock.Any(), testTenantID).Return(nil, storage.ErrNotFound)
			},
			expected: ErrTenantNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAuthz := NewMockAuthorizerInterface(ctrl)
			tt.setupMocks(mockStorage, mockAuthz)

			page, err := newTestService(mockStorage, mockAuthz).ListTenantUsers(context.Background(), "kratos-admin", testTenantID, tt.pageToken, tt.pageSize)

			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
				return
			}

			require.NoError(t, err)
			assert.Len(t, page.Members, tt.expectedLen)
			assert.Equal(t, tt.expectedToken, page.NextPageToken)
		})
	}
}

func TestService_ListTenantUsersLogsAuthzFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockAuthz := NewMockAuthorizerInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockSecurity := NewMockSecurityLoggerInterface(ctrl)

	svc := NewService(mockStorage, mockAuthz, mockTracer, monitoring.NewNoopMonitor("test", logging.NewNoopLogger()), mockLogger)

	mockTracer.EXPECT().Start(gomock.Any(), "tenant.Service.ListTenantUsers").
		Return(context.Background(), trace.SpanFromContext(context.Background()))
	mockStorage.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-student").Return(&types.User{ID: testUserID}, nil)
	mockAuthz.EXPECT().CheckTenantAccess(gomock.Any(), testTenantID, testUserID, authorization.CAN_VIEW_PERMISSION).Return(false, nil)
	mockLogger.EXPECT().Security().Return(mockSecurity)
	mockSecurity.EXPECT().AuthzFailure(testUserID, authorization.TenantTuple(testTenantID))

	_, err := svc.ListTenantUsers(context.Background(), "kratos-student", testTenantID, "", 0)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPageToken(t *testing.T) {
	offset, err := decodePageToken(encodePageToken(150))
	require.NoError(t, err)
	assert.Equal(t, uint64(150), offset)

	offset, err = decodePageToken("")
	require.NoError(t, err)
	assert.Zero(t, offset)

	_, err = decodePageToken(encodePageToken(1)[:1])
	assert.Error(t, err)

	_, err = decodePageToken(encodePageToken(math.MaxUint64))
	assert.Error(t, err)

	_, err = decodePageToken(encodePageToken(maxPageOffset))
	assert.NoError(t, err)
}

func TestService_ListTenantUsersMalformedTenantID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockAuthz := NewMockAuthorizerInterface(ctrl)

	mockStorage.EXPECT().GetUserByExternalID(gomock.Any(), "kratos-admin").Return(&types.User{ID: "local-admin"}, nil)
	mockAuthz.EXPECT().CheckTenantAccess(gomock.Any(), "springfield", "local-admin", authorization.CAN_VIEW_PERMISSION).Return(true, nil)

	_, err := newTestService(mockStorage, mockAuthz).ListTenantUsers(context.Background(), "kratos-admin", "springfield", "", 0)

	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestService_ListTenantUsersOutOfRangeToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	token := base64.URLEncoding.EncodeToString([]byte("9223372036854775808"))

	_, err := newTestService(NewMockStorageInterface(ctrl), NewMockAuthorizerInterface(ctrl)).
		ListTenantUsers(context.Background(), "kratos-admin", testTenantID, token, 0)

	assert.ErrorIs(t, err, ErrInvalidPageToken)
}
