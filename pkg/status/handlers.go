// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/learning-service/internal/http/types"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/internal/version"
)

const readyTimeout = 2 * time.Second

type Status struct {
	Status    string `json:"status"`
	BuildInfo string `json:"buildInfo,omitempty"`
}

type Version struct {
	Version string `json:"version"`
}

type API struct {
	db DatabaseInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/version", a.version)
	mux.Get("/api/v0/ready", a.ready)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.alive")
	defer span.End()

	s := Status{Status: "ok"}
	if info, ok := debug.ReadBuildInfo(); ok {
		s.BuildInfo = info.GoVersion
	}

	types.WriteJSON(w, http.StatusOK, s)
}

func (a *API) version(w http.ResponseWriter, r *http.Request) {
	types.WriteJSON(w, http.StatusOK, Version{Version: version.Version})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("readiness check failed: %s", err)
		types.WriteJSON(w, http.StatusServiceUnavailable, Status{Status: "database unavailable"})
		return
	}

	types.WriteJSON(w, http.StatusOK, Status{Status: "ok"})
}

func NewAPI(db DatabaseInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.db = db
	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
