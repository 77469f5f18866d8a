// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/learning-service/pkg/progress"
)

var (
	progressTenantID string
	progressUserID   string
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect learner progress",
}

var showProgressCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the progress snapshot of the caller, or of a tenant learner with --tenant and --learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (progressTenantID == "") != (progressUserID == "") {
			return fmt.Errorf("--tenant and --learner must be used together")
		}

		path := "/api/progress"
		if progressTenantID != "" {
			path = fmt.Sprintf("/api/tenants/%s/users/%s/progress", url.PathEscape(progressTenantID), url.PathEscape(progressUserID))
		}

		resp := new(struct {
			Data *progress.Snapshot `json:"data"`
		})

		client := newAPIClient(httpEndpoint, userID, accessToken)
		if err := client.do(context.Background(), "GET", path, nil, nil, resp); err != nil {
			return fmt.Errorf("failed to fetch progress: %w", err)
		}

		if resp.Data == nil {
			return fmt.Errorf("empty progress document")
		}

		printSnapshot(cmd.OutOrStdout(), resp.Data)
		return nil
	},
}

func printSnapshot(out io.Writer, s *progress.Snapshot) {
	o := s.OverallStats

	fmt.Fprintf(out, "Study time: %d min (%d min this week)\n", o.TotalStudyTime, o.WeeklyStudyTime)
	fmt.Fprintf(out, "Quizzes: %d, average score %.1f\n", o.TotalQuestions, o.AverageScore)
	fmt.Fprintf(out, "Enrolled courses: %d\n", o.EnrolledCourses)
	fmt.Fprintf(out, "Streak: %d days\n", o.Streak)

	if len(s.Degraded) > 0 {
		fmt.Fprintf(out, "Degraded: %s\n", strings.Join(s.Degraded, ", "))
	}

	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DATE\tDAY\tSTUDY_TIME\tSESSIONS\tQUIZZES")
	for _, d := range s.WeeklyActivity {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", d.Date, d.Day, d.StudyTime, d.Sessions, d.Quizzes)
	}
	w.Flush()

	if len(s.SubjectProgress) > 0 {
		fmt.Fprintln(out)

		w = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SUBJECT\tLESSONS\tPERCENT\tSTUDY_TIME")
		for _, p := range s.SubjectProgress {
			fmt.Fprintf(w, "%s\t%d/%d\t%d%%\t%d\n", p.Subject, p.CompletedLessons, p.TotalLessons, p.Percentage, p.StudyTime)
		}
		w.Flush()
	}

	var unlocked []string
	for _, a := range s.Achievements {
		if a.Unlocked {
			unlocked = append(unlocked, a.ID)
		}
	}

	if len(unlocked) > 0 {
		fmt.Fprintf(out, "\nAchievements: %s\n", strings.Join(unlocked, ", "))
	}
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(showProgressCmd)

	showProgressCmd.Flags().StringVar(&progressTenantID, "tenant", "", "Local tenant ID")
	showProgressCmd.Flags().StringVar(&progressUserID, "learner", "", "Local user ID of the learner")
}
