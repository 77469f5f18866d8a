// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/learning-service/internal/authorization"
	"github.com/canonical/learning-service/internal/config"
	"github.com/canonical/learning-service/internal/db"
	"github.com/canonical/learning-service/internal/dedup"
	"github.com/canonical/learning-service/internal/identity"
	"github.com/canonical/learning-service/internal/idp"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/monitoring/prometheus"
	"github.com/canonical/learning-service/internal/openfga"
	"github.com/canonical/learning-service/internal/storage"
	"github.com/canonical/learning-service/internal/tracing"
	"github.com/canonical/learning-service/pkg/authentication"
	"github.com/canonical/learning-service/pkg/progress"
	"github.com/canonical/learning-service/pkg/tenant"
	"github.com/canonical/learning-service/pkg/web"
	"github.com/canonical/learning-service/pkg/webhooks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newAuthorizer(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*authorization.Authorizer, error) {
	if !specs.AuthorizationEnabled {
		logger.Info("Using noop authorizer")
		return authorization.NewAuthorizer(openfga.NewNoopClient(tracer, monitor, logger), tracer, monitor, logger), nil
	}

	cfg := openfga.NewConfig(
		specs.OpenfgaApiScheme,
		specs.OpenfgaApiHost,
		specs.OpenfgaStoreId,
		specs.OpenfgaApiToken,
		specs.OpenfgaModelId,
		specs.Debug,
		tracer,
		monitor,
		logger,
	)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid openfga configuration: %w", err)
	}

	authorizer := authorization.NewAuthorizer(openfga.NewClient(cfg), tracer, monitor, logger)
	logger.Info("Authorization is enabled")

	if err := authorizer.ValidateModel(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid authorization model provided: %w", err)
	}

	return authorizer, nil
}

func newDedupStore(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (webhooks.DedupInterface, func(), error) {
	if specs.RedisURL == "" {
		logger.Info("REDIS_URL not set, webhook deliveries are not deduplicated")
		return dedup.NewNoopStore(), func() {}, nil
	}

	store, err := dedup.NewStore(specs.RedisURL, specs.WebhookDedupTTL, tracer, monitor, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create dedup store: %w", err)
	}

	if err := store.Ping(context.Background()); err != nil {
		logger.Warnf("redis not reachable at startup, deliveries are processed without dedup until it recovers: %s", err)
	}

	return store, func() { _ = store.Close() }, nil
}

func newAuthenticationMiddleware(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (func(http.Handler) http.Handler, error) {
	if !specs.AuthenticationEnabled {
		logger.Info("Authentication disabled, trusting the identity proxy header")
		return identity.NewMiddleware(tracer, monitor, logger).HTTPMiddleware, nil
	}

	verifier, err := authentication.NewJWTAuthenticator(
		context.Background(),
		specs.AuthenticationIssuer,
		specs.AuthenticationJwksURL,
		specs.AuthenticationAllowedSubjects,
		specs.AuthenticationRequiredScope,
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	return authentication.NewMiddleware(verifier, tracer, monitor, logger).Authenticate(), nil
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("learning-service", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, specs.TracingSampleRatio, logger))

	location, err := time.LoadLocation(specs.ProgressTimezone)
	if err != nil {
		return fmt.Errorf("invalid PROGRESS_TIMEZONE %q: %w", specs.ProgressTimezone, err)
	}

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TxTimeout:       specs.DBTxTimeout,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	authorizer, err := newAuthorizer(specs, tracer, monitor, logger)
	if err != nil {
		return err
	}

	dedupStore, closeDedup, err := newDedupStore(specs, tracer, monitor, logger)
	if err != nil {
		return err
	}
	defer closeDedup()

	authenticate, err := newAuthenticationMiddleware(specs, tracer, monitor, logger)
	if err != nil {
		return err
	}

	var verifier *webhooks.SignatureVerifier
	if specs.WebhookSecret != "" {
		verifier = webhooks.NewSignatureVerifier(specs.WebhookSecret, specs.WebhookSignatureMaxAge)
	} else {
		logger.Warn("WEBHOOK_SECRET not set, identity webhook signatures are not verified")
	}

	idpClient := idp.NewClient(
		specs.IdentityProviderURL,
		specs.IdentityProviderToken,
		specs.IdentityProviderProjectID,
		tracer,
		monitor,
		logger,
	)

	webhookService := webhooks.NewService(s, idpClient, authorizer, tracer, monitor, logger)
	progressService := progress.NewService(
		s,
		authorizer,
		specs.ProgressQueryTimeout,
		specs.ProgressPartialResults,
		location,
		tracer,
		monitor,
		logger,
	)

	tenantService := tenant.NewService(s, authorizer, tracer, monitor, logger)

	router := web.NewRouter(
		web.Config{
			DB:                 dbClient,
			Progress:           progressService,
			Tenants:            tenantService,
			Webhooks:           webhookService,
			Dedup:              dedupStore,
			Verifier:           verifier,
			Authenticate:       authenticate,
			CORSAllowedOrigins: specs.CORSAllowedOrigins,
		},
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}
