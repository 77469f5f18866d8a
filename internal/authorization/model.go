// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"encoding/json"
	"fmt"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/language/pkg/go/transformer"
)

const v0AuthzModel = `model
  schema 1.1

type user

type tenant
  relations
    define admin: [user]
    define member: [user] or admin
    define can_view: admin
`

var models = map[string]string{
	"v0": v0AuthzModel,
}

type AuthorizationModelProvider struct {
	version string
}

// GetModel parses the DSL of the configured version, unknown versions and
// malformed DSL are programming errors
func (p *AuthorizationModelProvider) GetModel() *fga.AuthorizationModel {
	dsl, ok := models[p.version]
	if !ok {
		panic(fmt.Sprintf("unknown authorization model version %q", p.version))
	}

	raw, err := transformer.TransformDSLToJSON(dsl)
	if err != nil {
		panic(fmt.Sprintf("failed to transform authorization model: %s", err))
	}

	model := new(fga.AuthorizationModel)
	if err := json.Unmarshal([]byte(raw), model); err != nil {
		panic(fmt.Sprintf("failed to unmarshal authorization model: %s", err))
	}

	return model
}

func NewAuthorizationModelProvider(version string) *AuthorizationModelProvider {
	p := new(AuthorizationModelProvider)
	p.version = version

	return p
}
