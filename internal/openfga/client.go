// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
)

type Client struct {
	c   *client.OpenFgaClient
	cfg *Config

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) Check(ctx context.Context, user, relation, object string, tuples ...Tuple) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.Check")
	defer span.End()

	body := client.ClientCheckRequest{
		User:     user,
		Relation: relation,
		Object:   object,
	}

	if len(tuples) > 0 {
		ct := make([]client.ClientContextualTupleKey, 0, len(tuples))
		for _, t := range tuples {
			ct = append(ct, t.ToOpenFGATupleKey())
		}
		body.ContextualTuples = ct
	}

	r, err := c.c.Check(ctx).Body(body).Execute()
	if err != nil {
		c.logger.Errorf("issues performing check operation: %s", err)
		return false, err
	}

	return r.GetAllowed(), nil
}

func (c *Client) ReadModel(ctx context.Context) (*fga.AuthorizationModel, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ReadModel")
	defer span.End()

	r, err := c.c.ReadAuthorizationModel(ctx).Execute()
	if err != nil {
		c.logger.Errorf("issues performing read model operation: %s", err)
		return nil, err
	}

	model := r.GetAuthorizationModel()

	return &model, nil
}

// CompareModel reports whether the stored model has the same type definitions
// and conditions as the given one
func (c *Client) CompareModel(ctx context.Context, model fga.AuthorizationModel) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.CompareModel")
	defer span.End()

	current, err := c.ReadModel(ctx)
	if err != nil {
		return false, err
	}

	if current.SchemaVersion != model.SchemaVersion {
		return false, nil
	}

	a, err := json.Marshal(struct {
		T []fga.TypeDefinition
		C *map[string]fga.Condition
	}{current.TypeDefinitions, current.Conditions})
	if err != nil {
		return false, fmt.Errorf("failed to marshal stored model: %w", err)
	}

	b, err := json.Marshal(struct {
		T []fga.TypeDefinition
		C *map[string]fga.Condition
	}{model.TypeDefinitions, model.Conditions})
	if err != nil {
		return false, fmt.Errorf("failed to marshal model: %w", err)
	}

	return bytes.Equal(a, b), nil
}

func (c *Client) ReadTuples(ctx context.Context, user, relation, object, continuationToken string) (*client.ClientReadResponse, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ReadTuples")
	defer span.End()

	body := client.ClientReadRequest{}

	if user != "" {
		body.User = &user
	}

	if relation != "" {
		body.Relation = &relation
	}

	if object != "" {
		body.Object = &object
	}

	options := client.ClientReadOptions{}
	if continuationToken != "" {
		options.ContinuationToken = &continuationToken
	}

	r, err := c.c.Read(ctx).Body(body).Options(options).Execute()
	if err != nil {
		c.logger.Errorf("issues performing read operation: %s", err)
		return nil, err
	}

	return r, nil
}

func (c *Client) WriteTuple(ctx context.Context, user, relation, object string) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteTuple")
	defer span.End()

	return c.WriteTuples(ctx, *NewTuple(user, relation, object))
}

func (c *Client) WriteTuples(ctx context.Context, tuples ...Tuple) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteTuples")
	defer span.End()

	if len(tuples) == 0 {
		return nil
	}

	body := make(client.ClientWriteTuplesBody, 0, len(tuples))
	for _, t := range tuples {
		body = append(body, t.ToOpenFGATupleKey())
	}

	_, err := c.c.WriteTuples(ctx).Body(body).Execute()
	if err != nil {
		c.logger.Errorf("issues performing write operation: %s", err)
		return err
	}

	return nil
}

func (c *Client) DeleteTuples(ctx context.Context, tuples ...Tuple) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.DeleteTuples")
	defer span.End()

	if len(tuples) == 0 {
		return nil
	}

	body := make(client.ClientDeleteTuplesBody, 0, len(tuples))
	for _, t := range tuples {
		body = append(body, t.ToOpenFGATupleKeyWithoutCondition())
	}

	_, err := c.c.DeleteTuples(ctx).Body(body).Execute()
	if err != nil {
		c.logger.Errorf("issues performing delete operation: %s", err)
		return err
	}

	return nil
}

func (c *Client) CreateStore(ctx context.Context, name string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.CreateStore")
	defer span.End()

	r, err := c.c.CreateStore(ctx).Body(client.ClientCreateStoreRequest{Name: name}).Execute()
	if err != nil {
		c.logger.Errorf("issues creating store: %s", err)
		return "", err
	}

	return r.GetId(), nil
}

// SetStoreID points the client at another store, the underlying sdk client is
// rebuilt since the store id is part of its configuration
func (c *Client) SetStoreID(ctx context.Context, storeID string) error {
	_, span := c.tracer.Start(ctx, "openfga.Client.SetStoreID")
	defer span.End()

	c.cfg.StoreID = storeID

	sdk, err := newSdkClient(c.cfg)
	if err != nil {
		return err
	}

	c.c = sdk

	return nil
}

func (c *Client) WriteModel(ctx context.Context, model *client.ClientWriteAuthorizationModelRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteModel")
	defer span.End()

	r, err := c.c.WriteAuthorizationModel(ctx).Body(*model).Execute()
	if err != nil {
		c.logger.Errorf("issues writing authorization model: %s", err)
		return "", err
	}

	return r.GetAuthorizationModelId(), nil
}

func newSdkClient(cfg *Config) (*client.OpenFgaClient, error) {
	return client.NewSdkClient(
		&client.ClientConfiguration{
			ApiUrl:               cfg.ApiURL(),
			StoreId:              cfg.StoreID,
			AuthorizationModelId: cfg.AuthModelID,
			Credentials: &credentials.Credentials{
				Method: credentials.CredentialsMethodApiToken,
				Config: &credentials.Config{
					ApiToken: cfg.ApiToken,
				},
			},
			Debug: cfg.Debug,
			HTTPClient: &http.Client{
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
		},
	)
}

func NewClient(cfg *Config) *Client {
	c := new(Client)

	if cfg == nil {
		panic("OpenFGA config missing")
	}

	c.cfg = cfg
	c.tracer = cfg.Tracer
	c.monitor = cfg.Monitor
	c.logger = cfg.Logger

	sdk, err := newSdkClient(cfg)
	if err != nil {
		c.logger.Fatalf("issues with OpenFGA client: %s", err)
	}

	c.c = sdk

	return c
}
