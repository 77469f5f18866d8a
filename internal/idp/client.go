// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package idp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	ory "github.com/ory/client-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/internal/types"
)

var ErrNotFound = errors.New("entity not found at identity provider")

type Client struct {
	client    *ory.APIClient
	projectID string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) GetUser(ctx context.Context, externalID string) (*types.User, error) {
	ctx, span := c.tracer.Start(ctx, "idp.Client.GetUser")
	defer span.End()

	identity, r, err := c.client.IdentityAPI.GetIdentity(ctx, externalID).Execute()
	c.recordAvailability(r, err)

	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("identity %s: %w", externalID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return UserFromTraits(identity.Id, identity.Traits), nil
}

func (c *Client) GetOrganization(ctx context.Context, externalID string) (*types.Tenant, error) {
	ctx, span := c.tracer.Start(ctx, "idp.Client.GetOrganization")
	defer span.End()

	res, r, err := c.client.ProjectAPI.GetOrganization(ctx, c.projectID, externalID).Execute()
	c.recordAvailability(r, err)

	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("organization %s: %w", externalID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	org := res.Organization

	t := new(types.Tenant)
	t.ExternalID = org.Id
	t.Name = org.Label
	if len(org.Domains) > 0 {
		t.Domain = org.Domains[0]
	}

	return t, nil
}

func (c *Client) recordAvailability(r *http.Response, err error) {
	up := 1.0
	if err != nil && (r == nil || r.StatusCode >= http.StatusInternalServerError) {
		up = 0
	}

	if mErr := c.monitor.SetDependencyAvailability(map[string]string{"component": "identity_provider"}, up); mErr != nil {
		c.logger.Debugf("failed to record identity provider availability: %s", mErr)
	}
}

func NewClient(url, token, projectID string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	conf := ory.NewConfiguration()
	conf.Servers = ory.ServerConfigurations{{URL: url}}
	conf.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	if token != "" {
		conf.AddDefaultHeader("Authorization", "Bearer "+token)
	}

	return &Client{
		client:    ory.NewAPIClient(conf),
		projectID: projectID,
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}
