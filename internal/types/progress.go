// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// StudyTotals holds the lifetime and recent counters of a learner, durations in minutes
type StudyTotals struct {
	TotalMinutes    int
	RecentMinutes   int
	QuizAttempts    int
	AverageScore    float64
	EnrolledCourses int
}

type SubjectStats struct {
	Subject          string
	CompletedLessons int
	TotalLessons     int
	StudyMinutes     int
	LastStudied      *time.Time
}

// DayActivity is the activity of a single calendar day, Day is truncated to midnight
type DayActivity struct {
	Day          time.Time
	StudyMinutes int
	Sessions     int
	Quizzes      int
}

const (
	MilestoneLesson = "lesson"
	MilestoneQuiz   = "quiz"
	MilestoneTask   = "task"
)

type Milestone struct {
	Kind        string
	Title       string
	CompletedAt time.Time
	Score       *int
}

type AchievementCounters struct {
	CompletedLessons int
	QuizAttempts     int
	HighScoreQuizzes int
	StudyMinutes     int
}

type QuizAttempt struct {
	Title       string
	Score       int
	CompletedAt time.Time
}

// HighScoreThreshold is the minimum quiz score counted as a milestone or towards quiz badges
const HighScoreThreshold = 90
