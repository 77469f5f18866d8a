// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/learning-service/internal/types"
	"github.com/canonical/learning-service/pkg/tenant"
)

var (
	usersPageSize  int
	usersPageToken string
	usersAllPages  bool
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Inspect tenants",
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tenants of the caller",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := new(struct {
			Data []*tenant.Tenant `json:"data"`
		})

		client := newAPIClient(httpEndpoint, userID, accessToken)
		if err := client.do(context.Background(), "GET", "/api/tenants", nil, nil, resp); err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tEXTERNAL_ID\tNAME\tDOMAIN")
		for _, t := range resp.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.ExternalID, t.Name, t.Domain)
		}
		w.Flush()
		return nil
	},
}

var listTenantUsersCmd = &cobra.Command{
	Use:   "users [tenant-id]",
	Short: "List the members of a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(httpEndpoint, userID, accessToken)

		var members []*types.TenantMember
		token := usersPageToken

		for {
			q := url.Values{}
			if usersPageSize > 0 {
				q.Set("page_size", fmt.Sprint(usersPageSize))
			}
			if token != "" {
				q.Set("page_token", token)
			}

			resp := new(struct {
				Data *tenant.MembersPage `json:"data"`
			})

			path := fmt.Sprintf("/api/tenants/%s/users?%s", url.PathEscape(args[0]), q.Encode())
			if err := client.do(context.Background(), "GET", path, nil, nil, resp); err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if resp.Data == nil {
				break
			}

			members = append(members, resp.Data.Members...)
			token = resp.Data.NextPageToken

			if !usersAllPages || token == "" {
				break
			}
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USER_ID\tEMAIL\tROLE\tSTATUS")
		for _, m := range members {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.UserID, m.Email, m.Role, m.Status)
		}
		w.Flush()

		if !usersAllPages && token != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nNext page token: %s\n", token)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(listTenantsCmd)
	tenantCmd.AddCommand(listTenantUsersCmd)

	listTenantUsersCmd.Flags().IntVar(&usersPageSize, "page-size", 0, "Members per page, the server default applies when unset")
	listTenantUsersCmd.Flags().StringVar(&usersPageToken, "page-token", "", "Token of the page to start from")
	listTenantUsersCmd.Flags().BoolVar(&usersAllPages, "all", false, "Follow page tokens until the roster is exhausted")
}
