// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"encoding/json"
	"fmt"
)

const (
	TypeUserCreated = "user.created"
	TypeUserUpdated = "user.updated"
	TypeUserDeleted = "user.deleted"

	TypeOrganizationCreated = "organization.created"
	TypeOrganizationUpdated = "organization.updated"
	TypeOrganizationDeleted = "organization.deleted"

	TypeMembershipCreated = "organization_membership.created"
	TypeMembershipUpdated = "organization_membership.updated"
	TypeMembershipDeleted = "organization_membership.deleted"
)

// Envelope is the identity provider delivery wrapper, Data is decoded
// according to Type and only required for known types
type Envelope struct {
	ID        string          `json:"id" validate:"required"`
	Type      string          `json:"type" validate:"required"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"createdAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type UserData struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type OrganizationDomain struct {
	Domain string `json:"domain"`
}

type OrganizationData struct {
	ID      string               `json:"id" validate:"required"`
	Name    string               `json:"name"`
	Domains []OrganizationDomain `json:"domains"`
}

func (o *OrganizationData) PrimaryDomain() string {
	for _, d := range o.Domains {
		if d.Domain != "" {
			return d.Domain
		}
	}

	return ""
}

// Role accepts both "role": "admin" and "role": {"slug": "admin"}
type Role string

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = Role(s)
		return nil
	}

	var obj struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("role must be a string or an object with a slug: %w", err)
	}

	*r = Role(obj.Slug)
	return nil
}

func (r Role) String() string {
	return string(r)
}

type MembershipData struct {
	ID             string `json:"id" validate:"required"`
	UserID         string `json:"user_id" validate:"required"`
	OrganizationID string `json:"organization_id" validate:"required"`
	Role           Role   `json:"role"`
	Status         string `json:"status"`
}

// RegistrationIdentity is the body Kratos posts after a registration
type RegistrationIdentity struct {
	ID     string         `json:"id" validate:"required"`
	Traits map[string]any `json:"traits"`
}

type TokenHookResponse struct {
	Session struct {
		IDToken     map[string]interface{} `json:"id_token,omitempty"`
		AccessToken map[string]interface{} `json:"access_token,omitempty"`
	} `json:"session"`
}
