// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"errors"

	"github.com/canonical/learning-service/internal/storage"
)

type Severity int

const (
	// Recoverable failures are logged and acknowledged
	Recoverable Severity = iota
	// Fatal failures are returned so the provider redelivers the event
	Fatal
)

func (s Severity) String() string {
	if s == Recoverable {
		return "recoverable"
	}

	return "fatal"
}

func classify(e Event, err error) Severity {
	switch e.(type) {
	case *UserCreated, *UserUpdated:
		return Recoverable
	case *UserDeleted, *OrganizationDeleted, *MembershipDeleted:
		if errors.Is(err, storage.ErrNotFound) {
			return Recoverable
		}
		return Fatal
	default:
		return Fatal
	}
}
