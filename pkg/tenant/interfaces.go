// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/learning-service/internal/types"
)

type ServiceInterface interface {
	// ListMyTenants lists the tenants of the caller identified by its identity provider id
	ListMyTenants(ctx context.Context, externalID string) ([]*Tenant, error)
	// ListTenantUsers pages through a tenant roster on behalf of a tenant viewer
	ListTenantUsers(ctx context.Context, viewerExternalID, tenantID, pageToken string, pageSize int) (*MembersPage, error)
}

type StorageInterface interface {
	GetUserByExternalID(ctx context.Context, externalID string) (*types.User, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	ListTenantMembers(ctx context.Context, tenantID string, limit, offset uint64) ([]*types.TenantMember, error)
}

type AuthorizerInterface interface {
	CheckTenantAccess(ctx context.Context, tenantID, userID, relation string) (bool, error)
}
