// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/learning-service/internal/types"
)

var membershipColumns = []string{
	"id", "external_id", "user_id", "tenant_id", "role", "status", "created_at", "updated_at", "deleted_at",
}

func scanMembership(row scanner) (*types.Membership, error) {
	var m types.Membership

	err := row.Scan(&m.ID, &m.ExternalID, &m.UserID, &m.TenantID, &m.Role, &m.Status, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// UpsertMembership keeps a single row per (user, tenant) pair. A redelivered event
// for a deleted membership leaves it deleted, a membership with a new provider id
// brings the row back
func (s *Storage) UpsertMembership(ctx context.Context, m *types.Membership) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertMembership")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate membership ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "external_id", "user_id", "tenant_id", "role", "status").
		Values(id.String(), m.ExternalID, m.UserID, m.TenantID, m.Role, m.Status).
		Suffix(
			"ON CONFLICT (user_id, tenant_id) DO UPDATE SET "+
				"deleted_at = CASE WHEN memberships.external_id = EXCLUDED.external_id THEN memberships.deleted_at ELSE NULL END, "+
				"external_id = EXCLUDED.external_id, "+
				"role = EXCLUDED.role, "+
				"status = EXCLUDED.status, "+
				"updated_at = NOW() "+
				"RETURNING "+joinColumns(membershipColumns),
		).
		QueryRowContext(ctx)

	membership, err := scanMembership(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to upsert membership")
	}

	return membership, nil
}

func (s *Storage) GetMembership(ctx context.Context, userID, tenantID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembership")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(membershipColumns...).
		From("memberships").
		Where(sq.Eq{"user_id": userID, "tenant_id": tenantID, "deleted_at": nil}).
		QueryRowContext(ctx)

	membership, err := scanMembership(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return membership, nil
}

func (s *Storage) UpdateMembership(ctx context.Context, userID, tenantID, role, status string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateMembership")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("memberships").
		Set("role", role).
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID, "tenant_id": tenantID, "deleted_at": nil}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}

	return checkAffected(res, "membership")
}

func (s *Storage) SoftDeleteMembership(ctx context.Context, userID, tenantID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.SoftDeleteMembership")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("memberships").
		Set("deleted_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID, "tenant_id": tenantID, "deleted_at": nil}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}

	return checkAffected(res, "membership")
}
