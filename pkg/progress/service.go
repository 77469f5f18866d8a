// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/canonical/learning-service/internal/authorization"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/storage"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/internal/types"
)

var (
	ErrLearnerNotFound = errors.New("learner not found")
	ErrForbidden       = errors.New("not allowed to view learner progress")
)

type Service struct {
	storage StorageInterface
	authz   AuthorizerInterface

	timeout  time.Duration
	partial  bool
	location *time.Location
	now      func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// NewService builds the aggregator, each branch runs under timeout and with
// partial set a failed branch degrades to its zero value instead of failing
// the whole snapshot
func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	timeout time.Duration,
	partial bool,
	location *time.Location,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	if location == nil {
		location = time.UTC
	}

	return &Service{
		storage:  storage,
		authz:    authz,
		timeout:  timeout,
		partial:  partial,
		location: location,
		now:      time.Now,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

func (s *Service) GetUserProgress(ctx context.Context, externalID string) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "progress.Service.GetUserProgress")
	defer span.End()

	user, err := s.storage.GetUserByExternalID(ctx, externalID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrLearnerNotFound, externalID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up learner: %w", err)
	}

	return s.snapshot(ctx, user.ID)
}

func (s *Service) GetTenantUserProgress(ctx context.Context, viewerExternalID, tenantID, userID string) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "progress.Service.GetTenantUserProgress")
	defer span.End()

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

	// ids are uuid columns, anything else cannot match a row
	if uuid.Validate(tenantID) != nil || uuid.Validate(userID) != nil {
		return nil, fmt.Errorf("%w: %s in tenant %s", ErrLearnerNotFound, userID, tenantID)
	}

	if _, err := s.storage.GetMembership(ctx, userID, tenantID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s in tenant %s", ErrLearnerNotFound, userID, tenantID)
		}

		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}

	return s.snapshot(ctx, userID)
}

type degraded struct {
	mu    sync.Mutex
	names []string
}

func (d *degraded) add(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.names = append(d.names, name)
}

func (d *degraded) list() []string {
	sort.Strings(d.names)
	return d.names
}

// branch runs fn on the group under the per branch timeout
func (s *Service) branch(ctx context.Context, g *errgroup.Group, d *degraded, name string, fn func(context.Context) error) {
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		err := fn(ctx)
		if err == nil {
			return nil
		}

		if !s.partial {
			return fmt.Errorf("%s: %w", name, err)
		}

		s.logger.Warnf("progress branch %s degraded: %s", name, err)
		d.add(name)

		return nil
	})
}

func (s *Service) snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "progress.Service.snapshot")
	defer span.End()

	today := startOfDay(s.now().In(s.location))
	weekStart := today.AddDate(0, 0, -(weekDays - 1))
	tz := s.location.String()

	totals := new(types.StudyTotals)
	counters := new(types.AchievementCounters)
	var (
		subjects   []*types.SubjectStats
		days       []*types.DayActivity
		milestones []*types.Milestone
		dates      []time.Time
		quizzes    []*types.QuizAttempt
	)

	d := new(degraded)
	g, gCtx := errgroup.WithContext(ctx)

	s.branch(gCtx, g, d, "overallStats", func(ctx context.Context) error {
		t, err := s.storage.GetStudyTotals(ctx, userID, weekStart)
		if err == nil {
			totals = t
		}
		return err
	})

	s.branch(gCtx, g, d, "subjectProgress", func(ctx context.Context) (err error) {
		subjects, err = s.storage.ListSubjectStats(ctx, userID)
		return err
	})

	s.branch(gCtx, g, d, "weeklyActivity", func(ctx context.Context) (err error) {
		days, err = s.storage.ListDailyActivity(ctx, userID, weekStart, tz)
		return err
	})

	s.branch(gCtx, g, d, "recentMilestones", func(ctx context.Context) (err error) {
		milestones, err = s.storage.ListMilestones(ctx, userID, weekStart)
		return err
	})

	s.branch(gCtx, g, d, "achievements", func(ctx context.Context) error {
		c, err := s.storage.GetAchievementCounters(ctx, userID)
		if err == nil {
			counters = c
		}
		return err
	})

	s.branch(gCtx, g, d, "streak", func(ctx context.Context) (err error) {
		dates, err = s.storage.ListStudyDates(ctx, userID, today.AddDate(0, 0, -(streakWindow-1)), tz)
		return err
	})

	s.branch(gCtx, g, d, "recentQuizzes", func(ctx context.Context) (err error) {
		quizzes, err = s.storage.ListRecentQuizAttempts(ctx, userID, recentQuizzes)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to aggregate progress: %w", err)
	}

	streakDays := streak(dates, today)
	subjectRollup := subjectProgress(subjects)

	return &Snapshot{
		OverallStats:     overallStats(totals, streakDays),
		SubjectProgress:  subjectRollup,
		WeeklyActivity:   weeklyActivity(days, today),
		RecentMilestones: recentMilestones(milestones),
		Achievements:     achievements(counters, streakDays, subjectRollup),
		RecentQuizzes:    quizScores(quizzes),
		Degraded:         d.list(),
	}, nil
}
