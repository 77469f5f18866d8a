// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package progress

import (
	"time"
)

// Snapshot is the merged progress document of a learner, durations are in minutes
type Snapshot struct {
	OverallStats     OverallStats      `json:"overallStats"`
	SubjectProgress  []SubjectProgress `json:"subjectProgress"`
	WeeklyActivity   []DayActivity     `json:"weeklyActivity"`
	RecentMilestones []Milestone       `json:"recentMilestones"`
	Achievements     []Achievement     `json:"achievements"`
	RecentQuizzes    []QuizScore       `json:"recentQuizzes"`

	// Degraded lists the branches that fell back to their zero value
	Degraded []string `json:"degraded,omitempty"`
}

type OverallStats struct {
	TotalStudyTime  int     `json:"totalStudyTime"`
	WeeklyStudyTime int     `json:"weeklyStudyTime"`
	TotalQuestions  int     `json:"totalQuestions"`
	AverageScore    float64 `json:"averageScore"`
	EnrolledCourses int     `json:"enrolledCourses"`
	Streak          int     `json:"streak"`
}

type SubjectProgress struct {
	Subject          string     `json:"subject"`
	CompletedLessons int        `json:"completedLessons"`
	TotalLessons     int        `json:"totalLessons"`
	Percentage       int        `json:"percentage"`
	StudyTime        int        `json:"studyTime"`
	LastStudied      *time.Time `json:"lastStudied"`
}

type DayActivity struct {
	Date      string `json:"date"`
	Day       string `json:"day"`
	StudyTime int    `json:"studyTime"`
	Sessions  int    `json:"sessions"`
	Quizzes   int    `json:"quizzes"`
}

type Milestone struct {
	Type  string    `json:"type"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Score *int      `json:"score,omitempty"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

type QuizScore struct {
	Title string    `json:"title"`
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}
