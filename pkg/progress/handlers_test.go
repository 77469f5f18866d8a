// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/pkg/authentication"
)

func emptySnapshot() *Snapshot {
	return &Snapshot{
		SubjectProgress:  []SubjectProgress{},
		WeeklyActivity:   weeklyActivity(nil, today),
		RecentMilestones: []Milestone{},
		Achievements:     []Achievement{},
		RecentQuizzes:    []QuizScore{},
	}
}

func TestAPI_GetProgress(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		userID         string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name:   "own progress",
			path:   "/api/progress",
			userID: "kratos-1",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().GetUserProgress(gomock.Any(), "kratos-1").Return(emptySnapshot(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthenticated",
			path:           "/api/progress",
			setupMocks:     func(s *MockServiceInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "unknown learner",
			path:   "/api/progress",
			userID: "kratos-1",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().GetUserProgress(gomock.Any(), "kratos-1").Return(nil, ErrLearnerNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "aggregation failure",
			path:   "/api/progress",
			userID: "kratos-1",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().GetUserProgress(gomock.Any(), "kratos-1").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:   "tenant learner progress",
			path:   "/api/tenants/local-t1/users/local-u1/progress",
			userID: "kratos-admin",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().GetTenantUserProgress(gomock.Any(), "kratos-admin", "local-t1", "local-u1").Return(emptySnapshot(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "tenant learner progress forbidden",
			path:   "/api/tenants/local-t1/users/local-u1/progress",
			userID: "kratos-admin",
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().GetTenantUserProgress(gomock.Any(), "kratos-admin", "local-t1", "local-u1").Return(nil, ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "tenant learner progress unauthenticated",
			path:           "/api/tenants/local-t1/users/local-u1/progress",
			setupMocks:     func(s *MockServiceInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			tt.setupMocks(mockService)

			router := chi.NewMux()
			NewAPI(mockService, tracing.NewNoopTracer(), logging.NewNoopLogger()).RegisterEndpoints(router)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.userID != "" {
				req = req.WithContext(authentication.WithUserID(context.Background(), tt.userID))
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json body: %v", err)
			}

			if body["success"] != (tt.expectedStatus == http.StatusOK) {
				t.Errorf("unexpected success flag in %v", body)
			}

			if tt.expectedStatus != http.StatusOK {
				if _, ok := body["error"].(string); !ok {
					t.Errorf("expected error message in %v", body)
				}
			}
		})
	}
}

func TestAPI_GetProgressEmptyLearnerDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockServiceInterface(ctrl)
	mockService.EXPECT().GetUserProgress(gomock.Any(), "kratos-1").Return(emptySnapshot(), nil)

	router := chi.NewMux()
	NewAPI(mockService, tracing.NewNoopTracer(), logging.NewNoopLogger()).RegisterEndpoints(router)

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	req = req.WithContext(authentication.WithUserID(req.Context(), "kratos-1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			OverallStats struct {
				Streak         *int `json:"streak"`
				TotalQuestions *int `json:"totalQuestions"`
			} `json:"overallStats"`
			SubjectProgress []any `json:"subjectProgress"`
			WeeklyActivity  []any `json:"weeklyActivity"`
			Degraded        []any `json:"degraded"`
		} `json:"data"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}

	if !body.Success {
		t.Fatal("expected success")
	}

	if body.Data.OverallStats.Streak == nil || *body.Data.OverallStats.Streak != 0 {
		t.Errorf("expected streak 0, got %v", body.Data.OverallStats.Streak)
	}

	if body.Data.OverallStats.TotalQuestions == nil || *body.Data.OverallStats.TotalQuestions != 0 {
		t.Errorf("expected totalQuestions 0, got %v", body.Data.OverallStats.TotalQuestions)
	}

	if body.Data.SubjectProgress == nil || len(body.Data.SubjectProgress) != 0 {
		t.Errorf("expected empty subjectProgress list, got %v", body.Data.SubjectProgress)
	}

	if len(body.Data.WeeklyActivity) != 7 {
		t.Errorf("expected 7 weekly entries, got %d", len(body.Data.WeeklyActivity))
	}

	if body.Data.Degraded != nil {
		t.Errorf("expected no degraded branches, got %v", body.Data.Degraded)
	}
}
