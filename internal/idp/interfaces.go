// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package idp

import (
	"context"

	"github.com/canonical/learning-service/internal/types"
)

// ClientInterface fetches entities the webhook stream references before
// announcing them
type ClientInterface interface {
	GetUser(ctx context.Context, externalID string) (*types.User, error)
	GetOrganization(ctx context.Context, externalID string) (*types.Tenant, error)
}
