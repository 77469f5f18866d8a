// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/learning-service/internal/types"
)

// GetStudyTotals aggregates the lifetime counters of a learner, RecentMinutes only
// counts sessions started after since
func (s *Storage) GetStudyTotals(ctx context.Context, userID string, since time.Time) (*types.StudyTotals, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetStudyTotals")
	defer span.End()

	var t types.StudyTotals
	err := s.db.Statement(ctx).
		Select().
		Column(sq.Expr("(SELECT COALESCE(SUM(duration_minutes), 0) FROM study_sessions WHERE user_id = ?)", userID)).
		Column(sq.Expr("(SELECT COALESCE(SUM(duration_minutes), 0) FROM study_sessions WHERE user_id = ? AND started_at >= ?)", userID, since)).
		Column(sq.Expr("(SELECT COUNT(*) FROM quiz_attempts WHERE user_id = ?)", userID)).
		Column(sq.Expr("(SELECT COALESCE(AVG(score), 0)::float8 FROM quiz_attempts WHERE user_id = ?)", userID)).
		Column(sq.Expr("(SELECT COUNT(*) FROM enrollments WHERE user_id = ?)", userID)).
		QueryRowContext(ctx).
		Scan(&t.TotalMinutes, &t.RecentMinutes, &t.QuizAttempts, &t.AverageScore, &t.EnrolledCourses)

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate study totals: %w", err)
	}

	return &t, nil
}

// ListSubjectStats groups lessons of the enrolled courses and study sessions by
// course subject, lesson totals are counted per subject
func (s *Storage) ListSubjectStats(ctx context.Context, userID string) ([]*types.SubjectStats, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListSubjectStats")
	defer span.End()

	stats := make(map[string]*types.SubjectStats)

	rows, err := s.db.Statement(ctx).
		Select("c.subject", "COUNT(l.id)", "COUNT(lp.lesson_id) FILTER (WHERE lp.completed)").
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Join("lessons l ON l.course_id = c.id").
		LeftJoin("lesson_progress lp ON lp.lesson_id = l.id AND lp.user_id = e.user_id").
		Where(sq.Eq{"e.user_id": userID}).
		GroupBy("c.subject").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate subject lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		st := new(types.SubjectStats)
		if err := rows.Scan(&st.Subject, &st.TotalLessons, &st.CompletedLessons); err != nil {
			return nil, fmt.Errorf("failed to scan subject lessons: %w", err)
		}
		stats[st.Subject] = st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	sessions, err := s.db.Statement(ctx).
		Select("c.subject", "COALESCE(SUM(ss.duration_minutes), 0)", "MAX(ss.started_at)").
		From("study_sessions ss").
		Join("courses c ON c.id = ss.course_id").
		Where(sq.Eq{"ss.user_id": userID}).
		GroupBy("c.subject").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate subject sessions: %w", err)
	}
	defer sessions.Close()

	for sessions.Next() {
		var subject string
		var minutes int
		var last *time.Time

		if err := sessions.Scan(&subject, &minutes, &last); err != nil {
			return nil, fmt.Errorf("failed to scan subject sessions: %w", err)
		}

		st, ok := stats[subject]
		if !ok {
			st = &types.SubjectStats{Subject: subject}
			stats[subject] = st
		}

		st.StudyMinutes = minutes
		st.LastStudied = last
	}

	if err := sessions.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	ret := make([]*types.SubjectStats, 0, len(stats))
	for _, st := range stats {
		ret = append(ret, st)
	}

	sort.Slice(ret, func(i, j int) bool { return ret[i].Subject < ret[j].Subject })

	return ret, nil
}

// ListDailyActivity returns one row per calendar day, in the given timezone, with
// at least one study session or quiz attempt since the given instant
func (s *Storage) ListDailyActivity(ctx context.Context, userID string, since time.Time, timezone string) ([]*types.DayActivity, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListDailyActivity")
	defer span.End()

	quizzes, quizArgs, err := sq.Select().
		Column(sq.Expr("DATE(completed_at AT TIME ZONE ?::text)", timezone)).
		Column("0").
		Column("0").
		Column("1").
		From("quiz_attempts").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"completed_at": since}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build quiz activity query: %w", err)
	}

	activity := sq.Select().
		Column(sq.Expr("DATE(started_at AT TIME ZONE ?::text) AS day", timezone)).
		Column("duration_minutes AS minutes").
		Column("1 AS sessions").
		Column("0 AS quizzes").
		From("study_sessions").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"started_at": since}).
		Suffix("UNION ALL "+quizzes, quizArgs...)

	rows, err := s.db.Statement(ctx).
		Select("day", "COALESCE(SUM(minutes), 0)", "SUM(sessions)", "SUM(quizzes)").
		FromSelect(activity, "activity").
		GroupBy("day").
		OrderBy("day").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily activity: %w", err)
	}
	defer rows.Close()

	var days []*types.DayActivity
	for rows.Next() {
		d := new(types.DayActivity)
		if err := rows.Scan(&d.Day, &d.StudyMinutes, &d.Sessions, &d.Quizzes); err != nil {
			return nil, fmt.Errorf("failed to scan daily activity: %w", err)
		}
		days = append(days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return days, nil
}

// ListMilestones returns completed lessons, high score quizzes and completed tasks
// since the given instant, unordered
func (s *Storage) ListMilestones(ctx context.Context, userID string, since time.Time) ([]*types.Milestone, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMilestones")
	defer span.End()

	quizzes, quizArgs, err := sq.Select().
		Column(literal(types.MilestoneQuiz)).
		Column("title").
		Column("completed_at").
		Column("score").
		From("quiz_attempts").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"score": types.HighScoreThreshold}).
		Where(sq.GtOrEq{"completed_at": since}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build quiz milestones query: %w", err)
	}

	tasks, taskArgs, err := sq.Select().
		Column(literal(types.MilestoneTask)).
		Column("title").
		Column("completed_at").
		Column("NULL::int").
		From("tasks").
		Where(sq.Eq{"user_id": userID, "completed": true}).
		Where(sq.GtOrEq{"completed_at": since}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task milestones query: %w", err)
	}

	rows, err := s.db.Statement(ctx).
		Select().
		Column(literal(types.MilestoneLesson)).
		Column("l.title").
		Column("lp.completed_at").
		Column("NULL::int").
		From("lesson_progress lp").
		Join("lessons l ON l.id = lp.lesson_id").
		Where(sq.Eq{"lp.user_id": userID, "lp.completed": true}).
		Where(sq.GtOrEq{"lp.completed_at": since}).
		Suffix("UNION ALL "+quizzes+" UNION ALL "+tasks, append(quizArgs, taskArgs...)...).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*types.Milestone
	for rows.Next() {
		m := new(types.Milestone)
		if err := rows.Scan(&m.Kind, &m.Title, &m.CompletedAt, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		milestones = append(milestones, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return milestones, nil
}

func (s *Storage) GetAchievementCounters(ctx context.Context, userID string) (*types.AchievementCounters, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetAchievementCounters")
	defer span.End()

	var c types.AchievementCounters
	err := s.db.Statement(ctx).
		Select().
		Column(sq.Expr("(SELECT COUNT(*) FROM lesson_progress WHERE user_id = ? AND completed)", userID)).
		Column(sq.Expr("(SELECT COUNT(*) FROM quiz_attempts WHERE user_id = ?)", userID)).
		Column(sq.Expr("(SELECT COUNT(*) FROM quiz_attempts WHERE user_id = ? AND score >= ?)", userID, types.HighScoreThreshold)).
		Column(sq.Expr("(SELECT COALESCE(SUM(duration_minutes), 0) FROM study_sessions WHERE user_id = ?)", userID)).
		QueryRowContext(ctx).
		Scan(&c.CompletedLessons, &c.QuizAttempts, &c.HighScoreQuizzes, &c.StudyMinutes)

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate achievement counters: %w", err)
	}

	return &c, nil
}

// ListStudyDates returns the distinct calendar days, in the given timezone, with at
// least one study session since the given instant, most recent first
func (s *Storage) ListStudyDates(ctx context.Context, userID string, since time.Time, timezone string) ([]time.Time, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListStudyDates")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select().
		Distinct().
		Column(sq.Expr("DATE(started_at AT TIME ZONE ?::text) AS day", timezone)).
		From("study_sessions").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"started_at": since}).
		OrderBy("day DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list study dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan study date: %w", err)
		}
		dates = append(dates, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return dates, nil
}

func (s *Storage) ListRecentQuizAttempts(ctx context.Context, userID string, limit uint64) ([]*types.QuizAttempt, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListRecentQuizAttempts")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("title", "score", "completed_at").
		From("quiz_attempts").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("completed_at DESC").
		Limit(limit).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*types.QuizAttempt
	for rows.Next() {
		q := new(types.QuizAttempt)
		if err := rows.Scan(&q.Title, &q.Score, &q.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz attempt: %w", err)
		}
		attempts = append(attempts, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return attempts, nil
}
