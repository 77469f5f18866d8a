// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"testing"

	"github.com/canonical/learning-service/internal/logging"
)

func TestMonitorMetrics(t *testing.T) {
	m := NewMonitor("test-service", logging.NewNoopLogger())

	if m.GetService() != "test-service" {
		t.Fatalf("expected service name test-service, got %s", m.GetService())
	}

	if err := m.SetResponseTimeMetric(map[string]string{"route": "GET /api/progress", "status": "200"}, 0.2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := m.SetDependencyAvailability(map[string]string{"component": "database"}, 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := m.IncWebhookEvent(map[string]string{"type": "user.created", "outcome": "processed"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMonitorWrongLabels(t *testing.T) {
	m := NewMonitor("test-service", logging.NewNoopLogger())

	if err := m.SetResponseTimeMetric(map[string]string{"unknown": "label"}, 0.2); err == nil {
		t.Error("expected error for unknown label set")
	}
}

func TestMonitorRegisteredTwice(t *testing.T) {
	first := NewMonitor("twice", logging.NewNoopLogger())
	second := NewMonitor("twice", logging.NewNoopLogger())

	if first.responseTime != second.responseTime {
		t.Error("expected the second monitor to reuse the registered histogram")
	}
}
