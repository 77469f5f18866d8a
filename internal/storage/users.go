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

var userColumns = []string{
	"id", "external_id", "email", "first_name", "last_name", "tenant_id", "created_at", "updated_at", "deleted_at",
}

type scanner interface {
	Scan(...interface{}) error
}

func scanUser(row scanner) (*types.User, error) {
	var u types.User

	err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.FirstName, &u.LastName, &u.TenantID, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// UpsertUser inserts the user or refreshes its profile fields, an already resolved
// tenant is never overwritten and a soft deleted row is not restored
func (s *Storage) UpsertUser(ctx context.Context, u *types.User) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertUser")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("users").
		Columns("id", "external_id", "email", "first_name", "last_name", "tenant_id").
		Values(id.String(), u.ExternalID, u.Email, u.FirstName, u.LastName, u.TenantID).
		Suffix(
			"ON CONFLICT (external_id) DO UPDATE SET "+
				"email = EXCLUDED.email, "+
				"first_name = EXCLUDED.first_name, "+
				"last_name = EXCLUDED.last_name, "+
				"tenant_id = COALESCE(users.tenant_id, EXCLUDED.tenant_id), "+
				"updated_at = NOW() "+
				"RETURNING "+joinColumns(userColumns),
		).
		QueryRowContext(ctx)

	user, err := scanUser(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to upsert user")
	}

	return user, nil
}

func (s *Storage) GetUserByExternalID(ctx context.Context, externalID string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByExternalID")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"external_id": externalID, "deleted_at": nil}).
		QueryRowContext(ctx)

	user, err := scanUser(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// SetUserTenant attaches the tenant to a user that has none yet, it is a no-op otherwise
func (s *Storage) SetUserTenant(ctx context.Context, userID, tenantID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetUserTenant")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Update("users").
		Set("tenant_id", tenantID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": userID, "tenant_id": nil}).
		ExecContext(ctx)

	if err != nil {
		return wrapWriteError(err, "failed to set user tenant")
	}

	return nil
}

func (s *Storage) SoftDeleteUser(ctx context.Context, externalID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.SoftDeleteUser")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("users").
		Set("deleted_at", sq.Expr("NOW()")).
		Where(sq.Eq{"external_id": externalID, "deleted_at": nil}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return checkAffected(res, "user")
}
