// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// Tenant is the local copy of an identity provider organization
type Tenant struct {
	ID         string     `db:"id"`
	ExternalID string     `db:"external_id"`
	Name       string     `db:"name"`
	Domain     string     `db:"domain"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

// User is the local copy of an identity provider user, TenantID stays nil
// until a membership event resolves it
type User struct {
	ID         string     `db:"id"`
	ExternalID string     `db:"external_id"`
	Email      string     `db:"email"`
	FirstName  string     `db:"first_name"`
	LastName   string     `db:"last_name"`
	TenantID   *string    `db:"tenant_id"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

func (u *User) HasTenant() bool {
	return u.TenantID != nil && *u.TenantID != ""
}

type Membership struct {
	ID         string     `db:"id"`
	ExternalID string     `db:"external_id"`
	UserID     string     `db:"user_id"`
	TenantID   string     `db:"tenant_id"`
	Role       string     `db:"role"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

// TenantMember is a roster entry, a membership joined with its user
type TenantMember struct {
	UserID     string    `db:"user_id" json:"userId"`
	ExternalID string    `db:"external_id" json:"externalId"`
	Email      string    `db:"email" json:"email"`
	FirstName  string    `db:"first_name" json:"firstName"`
	LastName   string    `db:"last_name" json:"lastName"`
	Role       string    `db:"role" json:"role"`
	Status     string    `db:"status" json:"status"`
	JoinedAt   time.Time `db:"created_at" json:"joinedAt"`
}
