// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package progress

import (
	"context"
	"time"

	"github.com/canonical/learning-service/internal/types"
)

// StorageInterface defines the read operations required by the progress package.
// It is a subset of the internal/storage interface.
type StorageInterface interface {
	GetUserByExternalID(ctx context.Context, externalID string) (*types.User, error)
	GetMembership(ctx context.Context, userID, tenantID string) (*types.Membership, error)

	GetStudyTotals(ctx context.Context, userID string, since time.Time) (*types.StudyTotals, error)
	ListSubjectStats(ctx context.Context, userID string) ([]*types.SubjectStats, error)
	ListDailyActivity(ctx context.Context, userID string, since time.Time, timezone string) ([]*types.DayActivity, error)
	ListMilestones(ctx context.Context, userID string, since time.Time) ([]*types.Milestone, error)
	GetAchievementCounters(ctx context.Context, userID string) (*types.AchievementCounters, error)
	ListStudyDates(ctx context.Context, userID string, since time.Time, timezone string) ([]time.Time, error)
	ListRecentQuizAttempts(ctx context.Context, userID string, limit uint64) ([]*types.QuizAttempt, error)
}

type AuthorizerInterface interface {
	CheckTenantAccess(ctx context.Context, tenantID, userID, relation string) (bool, error)
}

type ServiceInterface interface {
	// GetUserProgress builds the snapshot of the learner identified by its identity provider id
	GetUserProgress(ctx context.Context, externalID string) (*Snapshot, error)
	// GetTenantUserProgress builds the snapshot of a tenant learner on behalf of a tenant viewer
	GetTenantUserProgress(ctx context.Context, viewerExternalID, tenantID, userID string) (*Snapshot, error)
}
