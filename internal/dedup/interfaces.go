// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dedup

import "context"

// StoreInterface remembers processed webhook deliveries
type StoreInterface interface {
	Seen(ctx context.Context, id string) (bool, error)
	Remember(ctx context.Context, id string) error
}
