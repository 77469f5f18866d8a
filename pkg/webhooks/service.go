// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/ory/hydra/v2/oauth2"

	"github.com/canonical/learning-service/internal/authorization"
	"github.com/canonical/learning-service/internal/idp"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/storage"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/internal/types"
)

const inactiveStatus = "inactive"

var ErrUnhandledEvent = errors.New("unhandled event variant")

// ErrSwallowed marks a recoverable failure: the delivery is acknowledged and
// the writes it made are discarded
var ErrSwallowed = errors.New("recoverable failure")

type Service struct {
	storage StorageInterface
	idp     IdentityProviderInterface
	authz   AuthorizerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	idp IdentityProviderInterface,
	authz AuthorizerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		idp:     idp,
		authz:   authz,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// Dispatch applies the local mutation implied by the event. Recoverable
// failures are logged and returned wrapping ErrSwallowed, callers acknowledge
// them and roll back. Any other error is fatal
func (s *Service) Dispatch(ctx context.Context, e Event) error {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.Dispatch")
	defer span.End()

	var err error

	switch ev := e.(type) {
	case *UserCreated:
		err = s.upsertUser(ctx, ev.User)
	case *UserUpdated:
		err = s.upsertUser(ctx, ev.User)
	case *UserDeleted:
		err = s.storage.SoftDeleteUser(ctx, ev.User.ID)
	case *OrganizationCreated:
		err = s.upsertTenant(ctx, ev.Organization)
	case *OrganizationUpdated:
		err = s.upsertTenant(ctx, ev.Organization)
	case *OrganizationDeleted:
		err = s.deleteTenant(ctx, ev.Organization)
	case *MembershipCreated:
		err = s.createMembership(ctx, ev.Membership)
	case *MembershipUpdated:
		err = s.updateMembership(ctx, ev.Membership)
	case *MembershipDeleted:
		err = s.deleteMembership(ctx, ev.Membership)
	case *UnknownEvent:
		s.logger.Infof("ignoring event of unknown type %s", ev.Type())
		s.record(e, "ignored")
		return nil
	default:
		s.logger.Errorf("no handler for event variant %T", e)
		return fmt.Errorf("%w: %T", ErrUnhandledEvent, e)
	}

	if err == nil {
		s.record(e, "processed")
		return nil
	}

	if classify(e, err) == Recoverable {
		s.logger.Warnf("recoverable failure handling %s: %s", e.Type(), err)
		s.record(e, "swallowed")
		return fmt.Errorf("%w: %s: %s", ErrSwallowed, e.Type(), err)
	}

	s.logger.Errorf("fatal failure handling %s: %s", e.Type(), err)
	s.record(e, "failed")

	return fmt.Errorf("failed to handle %s: %w", e.Type(), err)
}

func (s *Service) record(e Event, outcome string) {
	if err := s.monitor.IncWebhookEvent(map[string]string{"type": e.Type(), "outcome": outcome}); err != nil {
		s.logger.Debugf("failed to record webhook event metric: %s", err)
	}
}

func (s *Service) upsertUser(ctx context.Context, u UserData) error {
	_, err := s.storage.UpsertUser(ctx, &types.User{
		ExternalID: u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	})

	return err
}

func (s *Service) upsertTenant(ctx context.Context, o OrganizationData) error {
	_, err := s.storage.UpsertTenant(ctx, &types.Tenant{
		ExternalID: o.ID,
		Name:       o.Name,
		Domain:     o.PrimaryDomain(),
	})

	return err
}

func (s *Service) deleteTenant(ctx context.Context, o OrganizationData) error {
	tenant, err := s.storage.GetTenantByExternalID(ctx, o.ID)
	if err != nil {
		return err
	}

	if err := s.storage.SoftDeleteTenant(ctx, o.ID); err != nil {
		return err
	}

	if err := s.authz.DeleteTenant(ctx, tenant.ID); err != nil {
		s.logger.Warnf("failed to remove authorization tuples of tenant %s: %s", tenant.ID, err)
	}

	return nil
}

// resolveTenant returns the local tenant, fetching it from the identity
// provider when the organization event has not arrived yet
func (s *Service) resolveTenant(ctx context.Context, externalID string) (*types.Tenant, error) {
	tenant, err := s.storage.GetTenantByExternalID(ctx, externalID)
	if err == nil {
		return tenant, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	fetched, err := s.idp.GetOrganization(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organization %s: %w", externalID, err)
	}

	return s.storage.UpsertTenant(ctx, fetched)
}

// resolveUser returns the local user, fetching it from the identity provider
// with the tenant attached when the user event has not arrived yet
func (s *Service) resolveUser(ctx context.Context, externalID, tenantID string) (*types.User, error) {
	user, err := s.storage.GetUserByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	fetched, err := s.idp.GetUser(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", externalID, err)
	}

	fetched.TenantID = &tenantID

	return s.storage.UpsertUser(ctx, fetched)
}

func (s *Service) createMembership(ctx context.Context, m MembershipData) error {
	tenant, err := s.resolveTenant(ctx, m.OrganizationID)
	if err != nil {
		return err
	}

	user, err := s.resolveUser(ctx, m.UserID, tenant.ID)
	if err != nil {
		return err
	}

	if !user.HasTenant() {
		if err := s.storage.SetUserTenant(ctx, user.ID, tenant.ID); err != nil {
			return err
		}
	}

	membership, err := s.storage.UpsertMembership(ctx, &types.Membership{
		ExternalID: m.ID,
		UserID:     user.ID,
		TenantID:   tenant.ID,
		Role:       m.Role.String(),
		Status:     m.Status,
	})
	if err != nil {
		return err
	}

	// a redelivered creation of a deleted membership keeps the row deleted,
	// so it must not grant access either
	if membership.DeletedAt != nil {
		s.logger.Infof("membership %s was deleted, not granting access", m.ID)
		return s.authz.RemoveTenantMembership(ctx, tenant.ID, user.ID)
	}

	return s.mirrorMembership(ctx, tenant.ID, user.ID, m)
}

func (s *Service) mirrorMembership(ctx context.Context, tenantID, userID string, m MembershipData) error {
	if m.Status == inactiveStatus {
		return s.authz.RemoveTenantMembership(ctx, tenantID, userID)
	}

	return s.authz.SyncTenantMembership(ctx, tenantID, userID, authorization.RoleRelation(m.Role.String()))
}

// localIDs maps the provider ids of a membership to local ids
func (s *Service) localIDs(ctx context.Context, m MembershipData) (string, string, error) {
	user, err := s.storage.GetUserByExternalID(ctx, m.UserID)
	if err != nil {
		return "", "", err
	}

	tenant, err := s.storage.GetTenantByExternalID(ctx, m.OrganizationID)
	if err != nil {
		return "", "", err
	}

	return user.ID, tenant.ID, nil
}

func (s *Service) updateMembership(ctx context.Context, m MembershipData) error {
	userID, tenantID, err := s.localIDs(ctx, m)
	if err != nil {
		return err
	}

	if err := s.storage.UpdateMembership(ctx, userID, tenantID, m.Role.String(), m.Status); err != nil {
		return err
	}

	return s.mirrorMembership(ctx, tenantID, userID, m)
}

func (s *Service) deleteMembership(ctx context.Context, m MembershipData) error {
	userID, tenantID, err := s.localIDs(ctx, m)
	if err != nil {
		return err
	}

	if err := s.storage.SoftDeleteMembership(ctx, userID, tenantID); err != nil {
		return err
	}

	if err := s.authz.RemoveTenantMembership(ctx, tenantID, userID); err != nil {
		s.logger.Warnf("failed to remove authorization tuples of user %s on tenant %s: %s", userID, tenantID, err)
	}

	return nil
}

// HandleRegistration records a freshly registered identity as if a
// user.created event had been delivered
func (s *Service) HandleRegistration(ctx context.Context, identity *RegistrationIdentity) error {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	if identity == nil || identity.ID == "" {
		return fmt.Errorf("%w: identity id is empty", ErrMalformedEvent)
	}

	s.logger.Debugf("handling registration for identity %s", identity.ID)

	u := idp.UserFromTraits(identity.ID, identity.Traits)

	return s.Dispatch(ctx, &UserCreated{User: UserData{
		ID:        u.ExternalID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}})
}

// HandleTokenHook adds the local tenant id and the provider organization id of
// the subject to the issued tokens, subjects without a tenant get no claims
func (s *Service) HandleTokenHook(ctx context.Context, req *oauth2.TokenHookRequest) (*TokenHookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleTokenHook")
	defer span.End()

	if req == nil || req.Session == nil || req.Session.DefaultSession == nil || req.Session.Subject == "" {
		s.logger.Debugf("token hook request without subject")
		return nil, fmt.Errorf("%w: session subject is empty", ErrMalformedEvent)
	}

	subject := req.Session.Subject
	s.logger.Debugf("handling token hook for subject %s", subject)

	resp := new(TokenHookResponse)

	user, err := s.storage.GetUserByExternalID(ctx, subject)
	if errors.Is(err, storage.ErrNotFound) {
		return resp, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.HasTenant() {
		return resp, nil
	}

	tenant, err := s.storage.GetTenantByID(ctx, *user.TenantID)
	if errors.Is(err, storage.ErrNotFound) {
		return resp, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up tenant: %w", err)
	}

	claims := map[string]interface{}{
		"tenant_id":       tenant.ID,
		"organization_id": tenant.ExternalID,
	}

	resp.Session.IDToken = claims
	resp.Session.AccessToken = claims

	return resp, nil
}
