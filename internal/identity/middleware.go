// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/pkg/authentication"
)

const (
	// HeaderName is the header used by the identity-aware proxy to pass the authenticated identity ID
	HeaderName = "X-Kratos-Authenticated-Identity-Id"
)

// Middleware trusts the identity header set by the proxy in front of the service,
// it is used when JWT authentication is disabled
type Middleware struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewMiddleware(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (m *Middleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "identity.Middleware.HTTPMiddleware")
		defer span.End()

		userID := strings.TrimSpace(r.Header.Get(HeaderName))
		if userID == "" {
			// handlers behind the authenticated group answer 401
			m.logger.Debugf("request to %s carries no %s header", r.URL.Path, HeaderName)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		span.SetAttributes(attribute.String("enduser.id", userID))

		next.ServeHTTP(w, r.WithContext(authentication.WithUserID(ctx, userID)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
