// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
)

// DatabaseInterface is the part of the db client the readiness check needs
type DatabaseInterface interface {
	Ping(ctx context.Context) error
}
