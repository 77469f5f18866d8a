// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/canonical/learning-service/internal/version"
)

type buildInfo struct {
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	GoVersion string `json:"goVersion"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the application's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		return writeVersion(cmd.OutOrStdout(), format, readBuildInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().String("format", "text", "Output format (text or json)")
}

func readBuildInfo() buildInfo {
	info := buildInfo{Version: version.Version, GoVersion: runtime.Version()}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			info.Revision = s.Value
		}
	}

	return info
}

func writeVersion(out io.Writer, format string, info buildInfo) error {
	switch format {
	case "json":
		return json.NewEncoder(out).Encode(info)
	case "text":
		fmt.Fprintf(out, "App Version: %s\n", info.Version)
		if info.Revision != "" {
			fmt.Fprintf(out, "Revision: %s\n", info.Revision)
		}
		_, err := fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
