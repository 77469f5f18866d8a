// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package idp

import (
	"strings"

	"github.com/canonical/learning-service/internal/types"
)

// UserFromTraits maps identity traits to a user, name may be either a
// {first, last} object or a single string split on the first space
func UserFromTraits(externalID string, traits any) *types.User {
	u := new(types.User)
	u.ExternalID = externalID

	t, ok := traits.(map[string]any)
	if !ok {
		return u
	}

	u.Email, _ = t["email"].(string)

	switch name := t["name"].(type) {
	case map[string]any:
		u.FirstName, _ = name["first"].(string)
		u.LastName, _ = name["last"].(string)
	case string:
		first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
		u.FirstName = first
		u.LastName = strings.TrimSpace(last)
	}

	return u
}
