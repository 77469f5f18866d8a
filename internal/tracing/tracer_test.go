// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"
	"testing"

	"github.com/canonical/learning-service/internal/logging"
)

func TestNewTracerDisabled(t *testing.T) {
	tracer := NewTracer(NewNoopConfig())

	ctx, span := tracer.Start(context.Background(), "tracing.Test")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected a context")
	}

	if span.SpanContext().IsValid() {
		t.Error("noop tracer must not record valid spans")
	}
}

func TestNewTracerStdoutFallback(t *testing.T) {
	tracer := NewTracer(NewConfig(true, "", "", 1, logging.NewNoopLogger()))

	_, span := tracer.Start(context.Background(), "tracing.Test")
	defer span.End()

	if !span.SpanContext().IsValid() {
		t.Error("expected a recording span with the stdout exporter")
	}
}

func TestNewConfigClampsSampleRatio(t *testing.T) {
	tests := []struct {
		ratio    float64
		expected float64
	}{
		{ratio: -0.5, expected: 0},
		{ratio: 0.25, expected: 0.25},
		{ratio: 3, expected: 1},
	}

	for _, tt := range tests {
		if got := NewConfig(true, "", "", tt.ratio, nil).SampleRatio; got != tt.expected {
			t.Errorf("ratio %v: expected %v, got %v", tt.ratio, tt.expected, got)
		}
	}
}

func TestNewTracerZeroRatioDropsRootSpans(t *testing.T) {
	tracer := NewTracer(NewConfig(true, "", "", 0, logging.NewNoopLogger()))

	_, span := tracer.Start(context.Background(), "tracing.Test")
	defer span.End()

	if span.IsRecording() {
		t.Error("root spans must not be sampled with a zero ratio")
	}
}
