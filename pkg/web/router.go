// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/learning-service/internal/db"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/pkg/metrics"
	"github.com/canonical/learning-service/pkg/progress"
	"github.com/canonical/learning-service/pkg/status"
	"github.com/canonical/learning-service/pkg/tenant"
	"github.com/canonical/learning-service/pkg/webhooks"
)

// Config groups the already built collaborators the router mounts
type Config struct {
	DB db.DBClientInterface

	Progress progress.ServiceInterface
	Tenants  tenant.ServiceInterface
	Webhooks webhooks.ServiceInterface
	Dedup    webhooks.DedupInterface
	Verifier *webhooks.SignatureVerifier

	// Authenticate resolves the caller identity on learner facing routes
	Authenticate func(http.Handler) http.Handler

	CORSAllowedOrigins []string
}

func NewRouter(
	cfg Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(cfg.CORSAllowedOrigins),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(cfg.DB, tracer, monitor, logger).RegisterEndpoints(router)

	// webhook senders authenticate with a signature, not a user session
	webhooks.NewAPI(cfg.Webhooks, cfg.DB, cfg.Dedup, cfg.Verifier, monitor, logger).RegisterEndpoints(router)

	router.Group(func(r chi.Router) {
		if cfg.Authenticate != nil {
			r.Use(cfg.Authenticate)
		}

		progress.NewAPI(cfg.Progress, tracer, logger).RegisterEndpoints(r)
		tenant.NewAPI(cfg.Tenants, tracer, logger).RegisterEndpoints(r)
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
