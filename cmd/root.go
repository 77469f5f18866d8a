// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// shared by the commands talking to a running server
var (
	userID       string
	accessToken  string
	httpEndpoint string
)

var rootCmd = &cobra.Command{
	Use:          "learning-service",
	Short:        "Learning Service",
	Long:         `Learning Service serves learner progress and mirrors identity provider webhooks into the local store.`,
	SilenceUsage: true,
}

// Execute runs the root command, it is called once by main.main
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpEndpoint, "http-endpoint", "http://localhost:8080", "Learning service base URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user-id", "", "Identity id sent in the identity proxy header, used when authentication is disabled")
	rootCmd.PersistentFlags().StringVar(&accessToken, "token", "", "Bearer token, see the token command")
}
