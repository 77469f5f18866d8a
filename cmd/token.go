// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// clientSecretEnv keeps the secret out of shell history when set
const clientSecretEnv = "LEARNING_CLIENT_SECRET"

type tokenOptions struct {
	clientID     string
	clientSecret string
	tokenURL     string
	issuerURL    string
	scopes       []string
	format       string
}

var tokenOpts tokenOptions

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Fetch a client credentials access token, usable with --token",
	Long: `Fetch an access token through the OAuth2 client credentials flow.

The token endpoint is taken from --token-url or discovered from --issuer-url.
The client secret can be passed through ` + clientSecretEnv + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := tokenOpts
		if opts.clientSecret == "" {
			opts.clientSecret = os.Getenv(clientSecretEnv)
		}

		if opts.clientSecret == "" {
			return fmt.Errorf("--client-secret or %s must be set", clientSecretEnv)
		}

		token, err := fetchToken(cmd.Context(), opts)
		if err != nil {
			return err
		}

		return writeToken(cmd.OutOrStdout(), opts.format, token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenOpts.clientID, "client-id", "", "OAuth2 client id")
	tokenCmd.Flags().StringVar(&tokenOpts.clientSecret, "client-secret", "", "OAuth2 client secret")
	tokenCmd.Flags().StringVar(&tokenOpts.tokenURL, "token-url", "", "Token endpoint")
	tokenCmd.Flags().StringVar(&tokenOpts.issuerURL, "issuer-url", "", "Issuer used for OIDC discovery of the token endpoint")
	tokenCmd.Flags().StringSliceVar(&tokenOpts.scopes, "scopes", []string{}, "Scopes (comma-separated)")
	tokenCmd.Flags().StringVar(&tokenOpts.format, "format", "raw", "Output format (raw, header or json)")

	_ = tokenCmd.MarkFlagRequired("client-id")
}

func fetchToken(ctx context.Context, opts tokenOptions) (*oauth2.Token, error) {
	tokenURL := opts.tokenURL

	if tokenURL == "" {
		if opts.issuerURL == "" {
			return nil, errors.New("either --token-url or --issuer-url must be provided")
		}

		provider, err := oidc.NewProvider(ctx, opts.issuerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to discover %s: %w", opts.issuerURL, err)
		}

		tokenURL = provider.Endpoint().TokenURL
	}

	config := &clientcredentials.Config{
		ClientID:     opts.clientID,
		ClientSecret: opts.clientSecret,
		TokenURL:     tokenURL,
		Scopes:       opts.scopes,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

func writeToken(out io.Writer, format string, token *oauth2.Token) error {
	switch format {
	case "raw":
		_, err := fmt.Fprintln(out, token.AccessToken)
		return err
	case "header":
		_, err := fmt.Fprintf(out, "Authorization: Bearer %s\n", token.AccessToken)
		return err
	case "json":
		v := struct {
			AccessToken string    `json:"access_token"`
			TokenType   string    `json:"token_type,omitempty"`
			Expiry      time.Time `json:"expiry,omitempty"`
		}{token.AccessToken, token.TokenType, token.Expiry}

		return json.NewEncoder(out).Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
