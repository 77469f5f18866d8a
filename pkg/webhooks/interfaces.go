// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"

	"github.com/ory/hydra/v2/oauth2"

	"github.com/canonical/learning-service/internal/types"
)

// StorageInterface defines the storage operations required by the webhooks package.
// It is a subset of the internal/storage interface.
type StorageInterface interface {
	UpsertUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*types.User, error)
	SetUserTenant(ctx context.Context, userID, tenantID string) error
	SoftDeleteUser(ctx context.Context, externalID string) error

	UpsertTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantByExternalID(ctx context.Context, externalID string) (*types.Tenant, error)
	SoftDeleteTenant(ctx context.Context, externalID string) error

	UpsertMembership(ctx context.Context, membership *types.Membership) (*types.Membership, error)
	UpdateMembership(ctx context.Context, userID, tenantID, role, status string) error
	SoftDeleteMembership(ctx context.Context, userID, tenantID string) error
}

// AuthorizerInterface defines the authorization operations required by the webhooks package.
// It is a subset of the internal/authorization interface.
type AuthorizerInterface interface {
	SyncTenantMembership(ctx context.Context, tenantID, userID, relation string) error
	RemoveTenantMembership(ctx context.Context, tenantID, userID string) error
	DeleteTenant(ctx context.Context, tenantID string) error
}

// IdentityProviderInterface fetches entities referenced by an event before the
// provider announced them
type IdentityProviderInterface interface {
	GetUser(ctx context.Context, externalID string) (*types.User, error)
	GetOrganization(ctx context.Context, externalID string) (*types.Tenant, error)
}

type DedupInterface interface {
	Seen(ctx context.Context, id string) (bool, error)
	Remember(ctx context.Context, id string) error
}

// ServiceInterface defines the webhook service operations.
type ServiceInterface interface {
	Dispatch(ctx context.Context, e Event) error
	HandleRegistration(ctx context.Context, identity *RegistrationIdentity) error
	HandleTokenHook(ctx context.Context, req *oauth2.TokenHookRequest) (*TokenHookResponse, error)
}
