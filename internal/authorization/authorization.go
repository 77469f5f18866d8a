// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"fmt"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/openfga"
	"github.com/canonical/learning-service/internal/tracing"
)

var ErrInvalidAuthModel = fmt.Errorf("invalid authorization model schema")

type Authorizer struct {
	client AuthzClientInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Check(ctx context.Context, user string, relation string, object string, contextualTuples ...openfga.Tuple) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.Check")
	defer span.End()

	return a.client.Check(ctx, user, relation, object, contextualTuples...)
}

func (a *Authorizer) ValidateModel(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.ValidateModel")
	defer span.End()

	v0AuthzModel := NewAuthorizationModelProvider("v0")
	model := *v0AuthzModel.GetModel()

	eq, err := a.client.CompareModel(ctx, model)
	if err != nil {
		return err
	}
	if !eq {
		return ErrInvalidAuthModel
	}
	return nil
}

// userTuples returns every tuple linking the user to the tenant, following
// continuation tokens
func (a *Authorizer) userTuples(ctx context.Context, tenantId, userId string) ([]openfga.Tuple, error) {
	var ts []openfga.Tuple

	cToken := ""
	for {
		r, err := a.client.ReadTuples(ctx, UserTuple(userId), "", TenantTuple(tenantId), cToken)
		if err != nil {
			a.logger.Errorf("error when retrieving tuples: %s", err)
			return nil, err
		}

		for _, t := range r.Tuples {
			ts = append(ts, *openfga.NewTuple(t.Key.User, t.Key.Relation, t.Key.Object))
		}

		if r.ContinuationToken == "" {
			break
		}
		cToken = r.ContinuationToken
	}

	return ts, nil
}

func (a *Authorizer) SyncTenantMembership(ctx context.Context, tenantId, userId, relation string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.SyncTenantMembership")
	defer span.End()

	current, err := a.userTuples(ctx, tenantId, userId)
	if err != nil {
		return err
	}

	found := false
	var stale []openfga.Tuple
	for _, t := range current {
		if t.Relation == relation {
			found = true
			continue
		}
		stale = append(stale, t)
	}

	if len(stale) > 0 {
		if err := a.client.DeleteTuples(ctx, stale...); err != nil {
			a.logger.Errorf("error when deleting tuples %v: %s", stale, err)
			return err
		}
	}

	if found {
		return nil
	}

	return a.client.WriteTuple(ctx, UserTuple(userId), relation, TenantTuple(tenantId))
}

func (a *Authorizer) RemoveTenantMembership(ctx context.Context, tenantId, userId string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.RemoveTenantMembership")
	defer span.End()

	current, err := a.userTuples(ctx, tenantId, userId)
	if err != nil {
		return err
	}

	if len(current) == 0 {
		return nil
	}

	if err := a.client.DeleteTuples(ctx, current...); err != nil {
		a.logger.Errorf("error when deleting tuples %v: %s", current, err)
		return err
	}

	return nil
}

func (a *Authorizer) CheckTenantAccess(ctx context.Context, tenantId, userId, relation string) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.CheckTenantAccess")
	defer span.End()

	return a.Check(ctx, UserTuple(userId), relation, TenantTuple(tenantId))
}

func (a *Authorizer) DeleteTenant(ctx context.Context, tenantId string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.DeleteTenant")
	defer span.End()

	cToken := ""
	for {
		r, err := a.client.ReadTuples(ctx, "", "", TenantTuple(tenantId), cToken)
		if err != nil {
			a.logger.Errorf("error when retrieving tuples: %s", err)
			return err
		}
		if len(r.Tuples) == 0 {
			break
		}
		ts := make([]openfga.Tuple, len(r.Tuples))
		for i, t := range r.Tuples {
			ts[i] = *openfga.NewTuple(t.Key.User, t.Key.Relation, t.Key.Object)
		}
		if err := a.client.DeleteTuples(ctx, ts...); err != nil {
			a.logger.Errorf("error when deleting tuples %v: %s", ts, err)
			return err
		}
		if r.ContinuationToken == "" {
			break
		}
		cToken = r.ContinuationToken
	}
	return nil
}

func NewAuthorizer(client AuthzClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)
	authorizer.client = client
	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
