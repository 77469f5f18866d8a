// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dedup

import "context"

// NoopStore never reports a delivery as seen
type NoopStore struct{}

func (s *NoopStore) Seen(context.Context, string) (bool, error) {
	return false, nil
}

func (s *NoopStore) Remember(context.Context, string) error {
	return nil
}

func NewNoopStore() *NoopStore {
	return new(NoopStore)
}
