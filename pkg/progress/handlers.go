// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package progress

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/learning-service/internal/http/types"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/pkg/authentication"
)

type API struct {
	service ServiceInterface

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		tracer:  tracer,
		logger:  logger,
	}
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/progress", a.getProgress)
	mux.Get("/api/tenants/{tenantID}/users/{userID}/progress", a.getTenantUserProgress)
}

func (a *API) getProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "progress.API.getProgress")
	defer span.End()

	userID, ok := authentication.GetUserID(ctx)
	if !ok {
		types.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	snapshot, err := a.service.GetUserProgress(ctx, userID)
	a.writeSnapshot(w, snapshot, err)
}

func (a *API) getTenantUserProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "progress.API.getTenantUserProgress")
	defer span.End()

	viewerID, ok := authentication.GetUserID(ctx)
	if !ok {
		types.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	snapshot, err := a.service.GetTenantUserProgress(ctx, viewerID, chi.URLParam(r, "tenantID"), chi.URLParam(r, "userID"))
	a.writeSnapshot(w, snapshot, err)
}

func (a *API) writeSnapshot(w http.ResponseWriter, snapshot *Snapshot, err error) {
	switch {
	case err == nil:
		types.WriteData(w, http.StatusOK, snapshot)
	case errors.Is(err, ErrLearnerNotFound):
		types.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrForbidden):
		types.WriteError(w, http.StatusForbidden, "forbidden")
	default:
		a.logger.Errorf("failed to build progress snapshot: %v", err)
		types.WriteError(w, http.StatusInternalServerError, "failed to load progress")
	}
}
