// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package progress

import (
	"math"
	"sort"
	"time"

	"github.com/canonical/learning-service/internal/types"
)

const (
	dateLayout = "2006-01-02"

	weekDays      = 7
	streakWindow  = 30
	maxMilestones = 10
	recentQuizzes = 5

	studyHourMinutes  = 60
	weekStreakDays    = 7
	quizChampionCount = 5
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// streak counts consecutive study days backwards from today, the first
// missing day ends the count
func streak(dates []time.Time, today time.Time) int {
	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		days[d.Format(dateLayout)] = struct{}{}
	}

	count := 0
	for day := today; count < streakWindow; day = day.AddDate(0, 0, -1) {
		if _, ok := days[day.Format(dateLayout)]; !ok {
			break
		}
		count++
	}

	return count
}

// weeklyActivity zero fills the week ending today, oldest first
func weeklyActivity(days []*types.DayActivity, today time.Time) []DayActivity {
	byDate := make(map[string]*types.DayActivity, len(days))
	for _, d := range days {
		byDate[d.Day.Format(dateLayout)] = d
	}

	week := make([]DayActivity, 0, weekDays)
	for i := weekDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)

		entry := DayActivity{
			Date: day.Format(dateLayout),
			Day:  day.Format("Mon"),
		}

		if d, ok := byDate[entry.Date]; ok {
			entry.StudyTime = d.StudyMinutes
			entry.Sessions = d.Sessions
			entry.Quizzes = d.Quizzes
		}

		week = append(week, entry)
	}

	return week
}

func percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}

	return int(math.Round(float64(completed) * 100 / float64(total)))
}

func subjectProgress(stats []*types.SubjectStats) []SubjectProgress {
	subjects := make([]SubjectProgress, 0, len(stats))

	for _, st := range stats {
		subjects = append(subjects, SubjectProgress{
			Subject:          st.Subject,
			CompletedLessons: st.CompletedLessons,
			TotalLessons:     st.TotalLessons,
			Percentage:       percentage(st.CompletedLessons, st.TotalLessons),
			StudyTime:        st.StudyMinutes,
			LastStudied:      st.LastStudied,
		})
	}

	return subjects
}

// recentMilestones orders milestones newest first and keeps the first ten
func recentMilestones(milestones []*types.Milestone) []Milestone {
	ret := make([]Milestone, 0, len(milestones))

	for _, m := range milestones {
		ret = append(ret, Milestone{
			Type:  m.Kind,
			Title: m.Title,
			Date:  m.CompletedAt,
			Score: m.Score,
		})
	}

	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Date.After(ret[j].Date) })

	if len(ret) > maxMilestones {
		ret = ret[:maxMilestones]
	}

	return ret
}

func quizScores(attempts []*types.QuizAttempt) []QuizScore {
	ret := make([]QuizScore, 0, len(attempts))

	for _, a := range attempts {
		ret = append(ret, QuizScore{Title: a.Title, Score: a.Score, Date: a.CompletedAt})
	}

	return ret
}

func overallStats(t *types.StudyTotals, streakDays int) OverallStats {
	return OverallStats{
		TotalStudyTime:  t.TotalMinutes,
		WeeklyStudyTime: t.RecentMinutes,
		TotalQuestions:  t.QuizAttempts,
		AverageScore:    math.Round(t.AverageScore*10) / 10,
		EnrolledCourses: t.EnrolledCourses,
		Streak:          streakDays,
	}
}

// achievements evaluates the badge catalogue, it needs the streak and the
// subject rollup so it runs after every branch completed
func achievements(c *types.AchievementCounters, streakDays int, subjects []SubjectProgress) []Achievement {
	mastered := false
	for _, s := range subjects {
		if s.TotalLessons > 0 && s.CompletedLessons >= s.TotalLessons {
			mastered = true
			break
		}
	}

	return []Achievement{
		{
			ID:          "first_lesson",
			Title:       "First Steps",
			Description: "Complete your first lesson",
			Unlocked:    c.CompletedLessons > 0,
		},
		{
			ID:          "first_quiz",
			Title:       "Quiz Taker",
			Description: "Take your first quiz",
			Unlocked:    c.QuizAttempts > 0,
		},
		{
			ID:          "study_hour",
			Title:       "Dedicated Learner",
			Description: "Study for a total of one hour",
			Unlocked:    c.StudyMinutes >= studyHourMinutes,
		},
		{
			ID:          "week_streak",
			Title:       "Week Warrior",
			Description: "Study seven days in a row",
			Unlocked:    streakDays >= weekStreakDays,
		},
		{
			ID:          "subject_master",
			Title:       "Subject Master",
			Description: "Complete every lesson of a subject",
			Unlocked:    mastered,
		},
		{
			ID:          "quiz_champion",
			Title:       "Quiz Champion",
			Description: "Score 90 or more on five quizzes",
			Unlocked:    c.HighScoreQuizzes >= quizChampionCount,
		},
	}
}
