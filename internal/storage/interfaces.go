// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/learning-service/internal/types"
)

type StorageInterface interface {
	UpsertUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*types.User, error)
	SetUserTenant(ctx context.Context, userID, tenantID string) error
	SoftDeleteUser(ctx context.Context, externalID string) error

	UpsertTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantByExternalID(ctx context.Context, externalID string) (*types.Tenant, error)
	SoftDeleteTenant(ctx context.Context, externalID string) error
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	ListTenantMembers(ctx context.Context, tenantID string, limit, offset uint64) ([]*types.TenantMember, error)

	UpsertMembership(ctx context.Context, m *types.Membership) (*types.Membership, error)
	GetMembership(ctx context.Context, userID, tenantID string) (*types.Membership, error)
	UpdateMembership(ctx context.Context, userID, tenantID, role, status string) error
	SoftDeleteMembership(ctx context.Context, userID, tenantID string) error

	GetStudyTotals(ctx context.Context, userID string, since time.Time) (*types.StudyTotals, error)
	ListSubjectStats(ctx context.Context, userID string) ([]*types.SubjectStats, error)
	ListDailyActivity(ctx context.Context, userID string, since time.Time, timezone string) ([]*types.DayActivity, error)
	ListMilestones(ctx context.Context, userID string, since time.Time) ([]*types.Milestone, error)
	GetAchievementCounters(ctx context.Context, userID string) (*types.AchievementCounters, error)
	ListStudyDates(ctx context.Context, userID string, since time.Time, timezone string) ([]time.Time, error)
	ListRecentQuizAttempts(ctx context.Context, userID string, limit uint64) ([]*types.QuizAttempt, error)
}
