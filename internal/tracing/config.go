// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"github.com/canonical/learning-service/internal/logging"
)

// Config selects the span exporter, the gRPC endpoint wins when both are set
type Config struct {
	OtelHTTPEndpoint string
	OtelGRPCEndpoint string

	// SampleRatio applies to root spans only, children follow their parent
	SampleRatio float64

	Logger logging.LoggerInterface

	Enabled bool
}

func NewConfig(enabled bool, otelGRPCEndpoint, otelHTTPEndpoint string, sampleRatio float64, logger logging.LoggerInterface) *Config {
	c := new(Config)

	c.Enabled = enabled
	c.OtelGRPCEndpoint = otelGRPCEndpoint
	c.OtelHTTPEndpoint = otelHTTPEndpoint
	c.SampleRatio = min(max(sampleRatio, 0), 1)
	c.Logger = logger

	return c
}

func NewNoopConfig() *Config {
	return &Config{Enabled: false}
}
