// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"errors"
	"net/http"
	"strconv"

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
	mux.Get("/api/tenants", a.listMyTenants)
	mux.Get("/api/tenants/{tenantID}/users", a.listTenantUsers)
}

func (a *API) listMyTenants(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listMyTenants")
	defer span.End()

	userID, ok := authentication.GetUserID(ctx)
	if !ok {
		types.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	tenants, err := a.service.ListMyTenants(ctx, userID)
	if err != nil {
		a.logger.Errorf("failed to list tenants: %v", err)
		types.WriteError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	types.WriteData(w, http.StatusOK, tenants)
}

func (a *API) listTenantUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listTenantUsers")
	defer span.End()

	viewerID, ok := authentication.GetUserID(ctx)
	if !ok {
		types.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	pageSize := 0
	if v := r.URL.Query().Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 0 {
			types.WriteError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		pageSize = size
	}

	page, err := a.service.ListTenantUsers(ctx, viewerID, chi.URLParam(r, "tenantID"), r.URL.Query().Get("page_token"), pageSize)

	switch {
	case err == nil:
		types.WriteData(w, http.StatusOK, page)
	case errors.Is(err, ErrInvalidPageToken):
		types.WriteError(w, http.StatusBadRequest, "invalid page_token")
	case errors.Is(err, ErrTenantNotFound):
		types.WriteError(w, http.StatusNotFound, "tenant not found")
	case errors.Is(err, ErrForbidden):
		types.WriteError(w, http.StatusForbidden, "forbidden")
	default:
		a.logger.Errorf("failed to list tenant users: %v", err)
		types.WriteError(w, http.StatusInternalServerError, "failed to list tenant users")
	}
}
