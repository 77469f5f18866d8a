// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/canonical/learning-service/internal/db"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/internal/types"
)

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	return NewStorage(db.NewDBClientFromSQL(sqlDB, tracer, monitor, logger), tracer, monitor, logger), mock
}

func ptr[T any](v T) *T {
	return &v
}

func userRow(tenantID *string) *sqlmock.Rows {
	now := time.Now()
	var tenant interface{}
	if tenantID != nil {
		tenant = *tenantID
	}

	return sqlmock.NewRows(userColumns).
		AddRow("local-u1", "u1", "ada@example.com", "Ada", "Lovelace", tenant, now, now, nil)
}

func TestUpsertUser(t *testing.T) {
	tests := []struct {
		name     string
		user     *types.User
		setup    func(sqlmock.Sqlmock)
		expected *string
		err      error
	}{
		{
			name: "insert without tenant",
			user: &types.User{ExternalID: "u1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (id,external_id,email,first_name,last_name,tenant_id)")).
					WithArgs(sqlmock.AnyArg(), "u1", "ada@example.com", "Ada", "Lovelace", nil).
					WillReturnRows(userRow(nil))
			},
		},
		{
			name: "keeps the resolved tenant",
			user: &types.User{ExternalID: "u1", Email: "ada@example.com"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("tenant_id = COALESCE(users.tenant_id, EXCLUDED.tenant_id)")).
					WillReturnRows(userRow(ptr("local-t1")))
			},
			expected: ptr("local-t1"),
		},
		{
			name: "duplicate key",
			user: &types.User{ExternalID: "u1"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO users").
					WillReturnError(&pgconn.PgError{Code: pgErrCodeUniqueViolation})
			},
			err: ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tt.setup(mock)

			u, err := s.UpsertUser(context.Background(), tt.user)

			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
				require.Equal(t, "local-u1", u.ID)
				require.Equal(t, tt.expected, u.TenantID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByExternalID(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE deleted_at IS NULL AND external_id = $1")).
		WithArgs("u1").
		WillReturnRows(userRow(ptr("local-t1")))

	u, err := s.GetUserByExternalID(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, u.HasTenant())

	mock.ExpectQuery("FROM users").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = s.GetUserByExternalID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery("FROM users").
		WithArgs("broken").
		WillReturnError(errors.New("connection reset"))

	_, err = s.GetUserByExternalID(context.Background(), "broken")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetUserTenantOnlyWhenUnset(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET tenant_id = $1, updated_at = NOW() WHERE id = $2 AND tenant_id IS NULL")).
		WithArgs("local-t1", "local-u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SetUserTenant(context.Background(), "local-u1", "local-t1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeletes(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		affected int64
		call     func(*Storage) error
		err      error
	}{
		{
			name:     "user",
			query:    "UPDATE users SET deleted_at = NOW() WHERE deleted_at IS NULL AND external_id = $1",
			affected: 1,
			call:     func(s *Storage) error { return s.SoftDeleteUser(context.Background(), "u1") },
		},
		{
			name:     "user not found",
			query:    "UPDATE users SET deleted_at = NOW()",
			affected: 0,
			call:     func(s *Storage) error { return s.SoftDeleteUser(context.Background(), "u1") },
			err:      ErrNotFound,
		},
		{
			name:     "tenant touches only the tenants table",
			query:    "UPDATE tenants SET deleted_at = NOW() WHERE deleted_at IS NULL AND external_id = $1",
			affected: 1,
			call:     func(s *Storage) error { return s.SoftDeleteTenant(context.Background(), "o1") },
		},
		{
			name:     "tenant not found",
			query:    "UPDATE tenants SET deleted_at = NOW()",
			affected: 0,
			call:     func(s *Storage) error { return s.SoftDeleteTenant(context.Background(), "o1") },
			err:      ErrNotFound,
		},
		{
			name:     "membership",
			query:    "UPDATE memberships SET deleted_at = NOW() WHERE deleted_at IS NULL AND tenant_id = $1 AND user_id = $2",
			affected: 1,
			call:     func(s *Storage) error { return s.SoftDeleteMembership(context.Background(), "local-u1", "local-t1") },
		},
		{
			name:     "membership not found",
			query:    "UPDATE memberships SET deleted_at = NOW()",
			affected: 0,
			call:     func(s *Storage) error { return s.SoftDeleteMembership(context.Background(), "local-u1", "local-t1") },
			err:      ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)

			mock.ExpectExec(regexp.QuoteMeta(tt.query)).WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := tt.call(s)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpsertTenant(t *testing.T) {
	s, mock := newTestStorage(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name")).
		WithArgs(sqlmock.AnyArg(), "o1", "Springfield High", "springfield.edu").
		WillReturnRows(
			sqlmock.NewRows(tenantColumns).
				AddRow("local-t1", "o1", "Springfield High", "springfield.edu", now, now, nil),
		)

	tenant, err := s.UpsertTenant(context.Background(), &types.Tenant{ExternalID: "o1", Name: "Springfield High", Domain: "springfield.edu"})
	require.NoError(t, err)
	require.Equal(t, "local-t1", tenant.ID)
	require.Nil(t, tenant.DeletedAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tenants WHERE deleted_at IS NULL AND external_id = $1")).
		WithArgs("o2").
		WillReturnRows(sqlmock.NewRows(tenantColumns))

	_, err = s.GetTenantByExternalID(context.Background(), "o2")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTenantsByUserID(t *testing.T) {
	s, mock := newTestStorage(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM tenants t JOIN memberships m ON t.id = m.tenant_id WHERE m.deleted_at IS NULL AND m.user_id = $1 AND t.deleted_at IS NULL ORDER BY t.name, t.id")).
		WithArgs("local-u1").
		WillReturnRows(
			sqlmock.NewRows(tenantColumns).
				AddRow("local-t1", "o1", "Springfield High", "springfield.edu", now, now, nil).
				AddRow("local-t2", "o2", "Shelbyville Prep", "shelbyville.edu", now, now, nil),
		)

	tenants, err := s.ListTenantsByUserID(context.Background(), "local-u1")
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	require.Equal(t, "o2", tenants[1].ExternalID)

	mock.ExpectQuery("FROM tenants t").
		WithArgs("local-u2").
		WillReturnRows(sqlmock.NewRows(tenantColumns))

	tenants, err = s.ListTenantsByUserID(context.Background(), "local-u2")
	require.NoError(t, err)
	require.NotNil(t, tenants)
	require.Empty(t, tenants)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTenantMembers(t *testing.T) {
	s, mock := newTestStorage(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM memberships m JOIN users u ON u.id = m.user_id WHERE m.deleted_at IS NULL AND m.tenant_id = $1 AND u.deleted_at IS NULL ORDER BY u.email, u.id LIMIT 21 OFFSET 20")).
		WithArgs("local-t1").
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "external_id", "email", "first_name", "last_name", "role", "status", "created_at"}).
				AddRow("local-u1", "u1", "ada@example.com", "Ada", "Lovelace", "student", "active", now),
		)

	members, err := s.ListTenantMembers(context.Background(), "local-t1", 21, 20)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "local-u1", members[0].UserID)
	require.Equal(t, "student", members[0].Role)

	mock.ExpectQuery("FROM memberships m").
		WillReturnError(errors.New("connection reset"))

	_, err = s.ListTenantMembers(context.Background(), "local-t1", 21, 0)
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMembership(t *testing.T) {
	s, mock := newTestStorage(t)
	now := time.Now()

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(membershipColumns).
			AddRow("local-m1", "m1", "local-u1", "local-t1", "student", "active", now, now, nil)
	}

	membership := &types.Membership{ExternalID: "m1", UserID: "local-u1", TenantID: "local-t1", Role: "student", Status: "active"}

	// the same event twice lands on the same row
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, tenant_id) DO UPDATE SET")).
			WithArgs(sqlmock.AnyArg(), "m1", "local-u1", "local-t1", "student", "active").
			WillReturnRows(rows())

		m, err := s.UpsertMembership(context.Background(), membership)
		require.NoError(t, err)
		require.Equal(t, "local-m1", m.ID)
	}

	mock.ExpectQuery("INSERT INTO memberships").
		WillReturnError(&pgconn.PgError{Code: pgErrCodeForeignKeyViolation})

	_, err := s.UpsertMembership(context.Background(), membership)
	require.ErrorIs(t, err, ErrForeignKeyViolation)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMembership(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE memberships SET role = $1, status = $2, updated_at = NOW()")).
		WithArgs("teacher", "active", "local-t1", "local-u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateMembership(context.Background(), "local-u1", "local-t1", "teacher", "active"))

	mock.ExpectExec("UPDATE memberships").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, s.UpdateMembership(context.Background(), "local-u1", "local-t1", "teacher", "active"), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStudyTotals(t *testing.T) {
	s, mock := newTestStorage(t)
	since := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM study_sessions WHERE user_id = $2 AND started_at >= $3")).
		WithArgs("local-u1", "local-u1", since, "local-u1", "local-u1", "local-u1").
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d", "e"}).AddRow(600, 90, 12, 81.5, 3))

	totals, err := s.GetStudyTotals(context.Background(), "local-u1", since)
	require.NoError(t, err)
	require.Equal(t, &types.StudyTotals{TotalMinutes: 600, RecentMinutes: 90, QuizAttempts: 12, AverageScore: 81.5, EnrolledCourses: 3}, totals)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSubjectStats(t *testing.T) {
	s, mock := newTestStorage(t)
	last := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments e JOIN courses c ON c.id = e.course_id")).
		WithArgs("local-u1").
		WillReturnRows(
			sqlmock.NewRows([]string{"subject", "total", "completed"}).
				AddRow("Maths", 20, 5).
				AddRow("Biology", 10, 10),
		)
	mock.ExpectQuery(regexp.QuoteMeta("FROM study_sessions ss JOIN courses c ON c.id = ss.course_id")).
		WithArgs("local-u1").
		WillReturnRows(
			sqlmock.NewRows([]string{"subject", "minutes", "last"}).
				AddRow("Maths", 120, last).
				AddRow("History", 30, last),
		)

	stats, err := s.ListSubjectStats(context.Background(), "local-u1")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	require.Equal(t, "Biology", stats[0].Subject)
	require.Equal(t, 10, stats[0].CompletedLessons)
	require.Nil(t, stats[0].LastStudied)

	require.Equal(t, "History", stats[1].Subject)
	require.Equal(t, 0, stats[1].TotalLessons)
	require.Equal(t, 30, stats[1].StudyMinutes)

	require.Equal(t, "Maths", stats[2].Subject)
	require.Equal(t, 20, stats[2].TotalLessons)
	require.Equal(t, 120, stats[2].StudyMinutes)
	require.Equal(t, &last, stats[2].LastStudied)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDailyActivity(t *testing.T) {
	s, mock := newTestStorage(t)
	since := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	day := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM (SELECT DATE(started_at AT TIME ZONE $1::text) AS day")).
		WithArgs("Europe/London", "local-u1", since, "Europe/London", "local-u1", since).
		WillReturnRows(sqlmock.NewRows([]string{"day", "minutes", "sessions", "quizzes"}).AddRow(day, 45, 2, 1))

	days, err := s.ListDailyActivity(context.Background(), "local-u1", since, "Europe/London")
	require.NoError(t, err)
	require.Equal(t, []*types.DayActivity{{Day: day, StudyMinutes: 45, Sessions: 2, Quizzes: 1}}, days)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListMilestones(t *testing.T) {
	s, mock := newTestStorage(t)
	since := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	at := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("UNION ALL SELECT 'quiz', title, completed_at, score FROM quiz_attempts")).
		WithArgs(true, "local-u1", since, "local-u1", types.HighScoreThreshold, since, true, "local-u1", since).
		WillReturnRows(
			sqlmock.NewRows([]string{"kind", "title", "completed_at", "score"}).
				AddRow(types.MilestoneLesson, "Cells", at, nil).
				AddRow(types.MilestoneQuiz, "Algebra", at, 95),
		)

	milestones, err := s.ListMilestones(context.Background(), "local-u1", since)
	require.NoError(t, err)
	require.Len(t, milestones, 2)
	require.Nil(t, milestones[0].Score)
	require.Equal(t, 95, *milestones[1].Score)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAchievementCounters(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM quiz_attempts WHERE user_id = $3 AND score >= $4")).
		WithArgs("local-u1", "local-u1", "local-u1", types.HighScoreThreshold, "local-u1").
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d"}).AddRow(4, 6, 5, 75))

	counters, err := s.GetAchievementCounters(context.Background(), "local-u1")
	require.NoError(t, err)
	require.Equal(t, &types.AchievementCounters{CompletedLessons: 4, QuizAttempts: 6, HighScoreQuizzes: 5, StudyMinutes: 75}, counters)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListStudyDates(t *testing.T) {
	s, mock := newTestStorage(t)
	since := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT DATE(started_at AT TIME ZONE $1::text) AS day FROM study_sessions")).
		WithArgs("UTC", "local-u1", since).
		WillReturnRows(sqlmock.NewRows([]string{"day"}).AddRow(d1).AddRow(d2))

	dates, err := s.ListStudyDates(context.Background(), "local-u1", since, "UTC")
	require.NoError(t, err)
	require.Equal(t, []time.Time{d1, d2}, dates)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentQuizAttempts(t *testing.T) {
	s, mock := newTestStorage(t)
	at := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM quiz_attempts WHERE user_id = $1 ORDER BY completed_at DESC LIMIT 5")).
		WithArgs("local-u1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "score", "completed_at"}).AddRow("Algebra", 72, at))

	attempts, err := s.ListRecentQuizAttempts(context.Background(), "local-u1", 5)
	require.NoError(t, err)
	require.Equal(t, []*types.QuizAttempt{{Title: "Algebra", Score: 72, CompletedAt: at}}, attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}
