// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/canonical/learning-service/pkg/webhooks"
)

var (
	webhookEventID   string
	webhookDataFile  string
	webhookSecret    string
	webhookTimestamp int64
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Replay identity provider webhooks",
}

var sendWebhookCmd = &cobra.Command{
	Use:   "send [type]",
	Short: "Wrap a data payload in an envelope, sign it and deliver it to the identity webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(webhookDataFile)
		if err != nil {
			return fmt.Errorf("failed to read data file: %w", err)
		}

		if !json.Valid(raw) {
			return fmt.Errorf("data file %s is not valid json", webhookDataFile)
		}

		body, err := buildEnvelope(args[0], webhookEventID, raw, time.Now().UTC())
		if err != nil {
			return err
		}

		headers := map[string]string{}
		if webhookSecret != "" {
			at := time.Now()
			if webhookTimestamp != 0 {
				at = time.Unix(webhookTimestamp, 0)
			}

			headers[webhooks.SignatureHeader] = webhooks.NewSignatureVerifier(webhookSecret, 0).Header(body, at)
		}

		client := newAPIClient(httpEndpoint, "", "")
		if err := client.do(context.Background(), "POST", "/api/webhooks/identity", body, headers, nil); err != nil {
			return fmt.Errorf("failed to deliver webhook: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Delivered %s\n", body)
		return nil
	},
}

// buildEnvelope wraps data in a delivery envelope, a v7 id is generated when none is given
func buildEnvelope(eventType, id string, data json.RawMessage, at time.Time) ([]byte, error) {
	if id == "" {
		v7, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate event id: %w", err)
		}
		id = "evt_" + v7.String()
	}

	env := webhooks.Envelope{
		ID:        id,
		Type:      eventType,
		Data:      data,
		CreatedAt: at.Format(time.RFC3339),
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if _, _, err := webhooks.ParseEvent(body); err != nil {
		return nil, err
	}

	return body, nil
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(sendWebhookCmd)

	sendWebhookCmd.Flags().StringVar(&webhookEventID, "id", "", "Envelope ID, generated when empty")
	sendWebhookCmd.Flags().StringVar(&webhookDataFile, "data", "", "Path to the JSON event data")
	sendWebhookCmd.Flags().StringVar(&webhookSecret, "secret", os.Getenv("WEBHOOK_SECRET"), "Signing secret, defaults to $WEBHOOK_SECRET")
	sendWebhookCmd.Flags().Int64Var(&webhookTimestamp, "timestamp", 0, "Unix timestamp to sign with, defaults to now")

	_ = sendWebhookCmd.MarkFlagRequired("data")
}
