// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"
)

func TestDebugLogger(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("DEBUG")
	}()
}

func TestInvalidLevel(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("invalid")
	}()
}

func TestNoopLoggerSecurity(t *testing.T) {
	logger := NewNoopLogger()

	if logger.Security() == nil {
		t.Fatal("expected security logger")
	}

	logger.Security().SystemStartup()
	logger.Security().AuthzFailure("user-1", "tenant:1")
	logger.Security().InputValidationFailure("webhook", "bad signature")
	logger.Security().SystemShutdown()
}
