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

var tenantColumns = []string{
	"id", "external_id", "name", "domain", "created_at", "updated_at", "deleted_at",
}

func scanTenant(row scanner) (*types.Tenant, error) {
	var t types.Tenant

	err := row.Scan(&t.ID, &t.ExternalID, &t.Name, &t.Domain, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (s *Storage) UpsertTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "external_id", "name", "domain").
		Values(id.String(), t.ExternalID, t.Name, t.Domain).
		Suffix(
			"ON CONFLICT (external_id) DO UPDATE SET "+
				"name = EXCLUDED.name, "+
				"domain = EXCLUDED.domain, "+
				"updated_at = NOW() "+
				"RETURNING "+joinColumns(tenantColumns),
		).
		QueryRowContext(ctx)

	tenant, err := scanTenant(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to upsert tenant")
	}

	return tenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"id": id, "deleted_at": nil})
}

func (s *Storage) GetTenantByExternalID(ctx context.Context, externalID string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByExternalID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"external_id": externalID, "deleted_at": nil})
}

func (s *Storage) getTenant(ctx context.Context, where sq.Eq) (*types.Tenant, error) {
	row := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		Where(where).
		QueryRowContext(ctx)

	tenant, err := scanTenant(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}

// SoftDeleteTenant marks the tenant as deleted, users and memberships pointing
// at it are left untouched
func (s *Storage) SoftDeleteTenant(ctx context.Context, externalID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.SoftDeleteTenant")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("deleted_at", sq.Expr("NOW()")).
		Where(sq.Eq{"external_id": externalID, "deleted_at": nil}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	return checkAffected(res, "tenant")
}

// ListTenantsByUserID returns the live tenants the user holds a live membership in
func (s *Storage) ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenantsByUserID")
	defer span.End()

	columns := make([]string, 0, len(tenantColumns))
	for _, c := range tenantColumns {
		columns = append(columns, "t."+c)
	}

	rows, err := s.db.Statement(ctx).
		Select(columns...).
		From("tenants t").
		Join("memberships m ON t.id = m.tenant_id").
		Where(sq.Eq{"m.user_id": userID, "m.deleted_at": nil, "t.deleted_at": nil}).
		OrderBy("t.name", "t.id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]*types.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tenants, nil
}

var tenantMemberColumns = []string{
	"u.id", "u.external_id", "u.email", "u.first_name", "u.last_name", "m.role", "m.status", "m.created_at",
}

// ListTenantMembers pages through the live members of a tenant ordered by email
func (s *Storage) ListTenantMembers(ctx context.Context, tenantID string, limit, offset uint64) ([]*types.TenantMember, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenantMembers")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(tenantMemberColumns...).
		From("memberships m").
		Join("users u ON u.id = m.user_id").
		Where(sq.Eq{"m.tenant_id": tenantID, "m.deleted_at": nil, "u.deleted_at": nil}).
		OrderBy("u.email", "u.id").
		Limit(limit).
		Offset(offset).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := make([]*types.TenantMember, 0)
	for rows.Next() {
		var m types.TenantMember
		if err := rows.Scan(&m.UserID, &m.ExternalID, &m.Email, &m.FirstName, &m.LastName, &m.Role, &m.Status, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}
