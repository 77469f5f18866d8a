// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ory/hydra/v2/oauth2"

	"github.com/canonical/learning-service/internal/db"
	"github.com/canonical/learning-service/internal/http/types"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
)

const maxBodySize = 1 << 20

type API struct {
	service  ServiceInterface
	db       db.DBClientInterface
	dedup    DedupInterface
	verifier *SignatureVerifier

	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// NewAPI wires the webhook endpoints, a nil verifier disables signature checks
func NewAPI(
	service ServiceInterface,
	dbClient db.DBClientInterface,
	dedup DedupInterface,
	verifier *SignatureVerifier,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		service:  service,
		db:       dbClient,
		dedup:    dedup,
		verifier: verifier,
		monitor:  monitor,
		logger:   logger,
	}
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/api/webhooks/identity", a.identity)
	mux.Post("/api/webhooks/token", a.tokenHook)
	mux.With(db.TransactionMiddleware(a.db, a.logger)).Post("/api/webhooks/registration", a.registration)
}

// identity commits the event inside its own transaction before answering, so a
// delivery is only remembered once its writes are durable
func (a *API) identity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		types.WriteError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	if a.verifier != nil {
		if err := a.verifier.Verify(r.Header.Get(SignatureHeader), body); err != nil {
			a.logger.Security().AuthnFailure(err.Error())
			types.WriteError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
	}

	env, event, err := ParseEvent(body)
	if err != nil {
		a.logger.Security().InputValidationFailure("identity webhook", err.Error())
		types.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	seen, err := a.dedup.Seen(ctx, env.ID)
	if err != nil {
		a.logger.Warnf("unable to check delivery %s, processing it: %s", env.ID, err)
	}

	if seen {
		a.logger.Infof("delivery %s already processed", env.ID)
		if mErr := a.monitor.IncWebhookEvent(map[string]string{"type": env.Type, "outcome": "duplicate"}); mErr != nil {
			a.logger.Debugf("failed to record webhook event metric: %s", mErr)
		}
		types.WriteSuccess(w)
		return
	}

	err = a.db.WithTx(ctx, func(txCtx context.Context) error {
		err := a.service.Dispatch(txCtx, event)

		// a failed statement aborts the transaction, it cannot be committed
		if errors.Is(err, ErrSwallowed) {
			db.RollbackOnly(txCtx)
			return nil
		}

		return err
	})

	if err != nil {
		a.logger.Errorf("delivery %s failed: %s", env.ID, err)
		types.WriteError(w, http.StatusInternalServerError, "unable to process event")
		return
	}

	if err := a.dedup.Remember(ctx, env.ID); err != nil {
		a.logger.Warnf("unable to remember delivery %s: %s", env.ID, err)
	}

	types.WriteSuccess(w)
}

func (a *API) registration(w http.ResponseWriter, r *http.Request) {
	identity := new(RegistrationIdentity)

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(identity); err != nil {
		a.logger.Errorf("invalid registration payload: %s", err)
		types.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(identity); err != nil {
		a.logger.Security().InputValidationFailure("registration webhook", err.Error())
		types.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := a.service.HandleRegistration(r.Context(), identity)
	if errors.Is(err, ErrSwallowed) {
		db.RollbackOnly(r.Context())
		types.WriteSuccess(w)
		return
	}

	if err != nil {
		a.logger.Errorf("registration of %s failed: %s", identity.ID, err)
		types.WriteError(w, http.StatusInternalServerError, "unable to process registration")
		return
	}

	types.WriteSuccess(w)
}

func (a *API) tokenHook(w http.ResponseWriter, r *http.Request) {
	req := new(oauth2.TokenHookRequest)

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(req); err != nil {
		a.logger.Errorf("invalid token hook payload: %s", err)
		types.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := a.service.HandleTokenHook(r.Context(), req)
	if errors.Is(err, ErrMalformedEvent) {
		types.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err != nil {
		a.logger.Errorf("token hook failed: %s", err)
		types.WriteError(w, http.StatusInternalServerError, "unable to process token hook")
		return
	}

	types.WriteJSON(w, http.StatusOK, resp)
}
