// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/canonical/learning-service/internal/authorization"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/storage"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/internal/types"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200

	// offsets stay representable as a postgres bigint after adding a page
	maxPageOffset = math.MaxInt64 - MaxPageSize - 1
)

var (
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrForbidden        = errors.New("not allowed to view tenant")
	ErrInvalidPageToken = errors.New("invalid page token")
)

// Tenant is the public view of a tenant
type Tenant struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Domain     string `json:"domain,omitempty"`
}

type MembersPage struct {
	Members       []*types.TenantMember `json:"members"`
	NextPageToken string                `json:"nextPageToken,omitempty"`
}

type Service struct {
	storage StorageInterface
	authz   AuthorizerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		authz:   authz,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// ListMyTenants answers with an empty list for callers the identity webhooks
// have not delivered yet
func (s *Service) ListMyTenants(ctx context.Context, externalID string) ([]*Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListMyTenants")
	defer span.End()

	user, err := s.storage.GetUserByExternalID(ctx, externalID)
	if errors.Is(err, storage.ErrNotFound) {
		return []*Tenant{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	tenants, err := s.storage.ListTenantsByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants for user: %w", err)
	}

	result := make([]*Tenant, 0, len(tenants))
	for _, t := range tenants {
		result = append(result, &Tenant{ID: t.ID, ExternalID: t.ExternalID, Name: t.Name, Domain: t.Domain})
	}

	return result, nil
}

func (s *Service) ListTenantUsers(ctx context.Context, viewerExternalID, tenantID, pageToken string, pageSize int) (*MembersPage, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenantUsers")
	defer span.End()

	offset, err := decodePageToken(pageToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPageToken, err)
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	viewer, err := s.storage.GetUserByExternalID(ctx, viewerExternalID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Security().AuthzFailure(viewerExternalID, authorization.TenantTuple(tenantID))
		return nil, ErrForbidden
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up viewer: %w", err)
	}

	allowed, err := s.authz.CheckTenantAccess(ctx, tenantID, viewer.ID, authorization.CAN_VIEW_PERMISSION)
	if err != nil {
		return nil, fmt.Errorf("failed to check tenant access: %w", err)
	}

	if !allowed {
		s.logger.Security().AuthzFailure(viewer.ID, authorization.TenantTuple(tenantID))
		return nil, ErrForbidden
	}

	if uuid.Validate(tenantID) != nil {
		return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, tenantID)
	}

	if _, err := s.storage.GetTenantByID(ctx, tenantID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, tenantID)
		}

		return nil, fmt.Errorf("failed to look up tenant: %w", err)
	}

	// one extra row tells whether another page exists
	members, err := s.storage.ListTenantMembers(ctx, tenantID, uint64(pageSize)+1, offset)
	if err != nil {
		return nil, err
	}

	page := &MembersPage{Members: members}
	if len(members) > pageSize {
		page.Members = members[:pageSize]
		page.NextPageToken = encodePageToken(offset + uint64(pageSize))
	}

	return page, nil
}

func encodePageToken(offset uint64) string {
	return base64.URLEncoding.EncodeToString([]byte(strconv.FormatUint(offset, 10)))
}

func decodePageToken(token string) (uint64, error) {
	if token == "" {
		return 0, nil
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return 0, err
	}
	offset, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, err
	}
	if offset > maxPageOffset {
		return 0, fmt.Errorf("offset %d out of range", offset)
	}
	return offset, nil
}
