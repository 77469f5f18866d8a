// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import "strings"

const (
	ADMIN_RELATION  = "admin"
	MEMBER_RELATION = "member"

	CAN_VIEW_PERMISSION = "can_view"
)

// privileged organization roles, matched case insensitively
var adminRoles = []string{"admin", "owner", "teacher"}

func UserTuple(userId string) string {
	return "user:" + userId
}

func TenantTuple(tenantId string) string {
	return "tenant:" + tenantId
}

// RoleRelation maps an identity provider membership role to a tenant relation
func RoleRelation(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))

	for _, r := range adminRoles {
		if role == r {
			return ADMIN_RELATION
		}
	}

	return MEMBER_RELATION
}
