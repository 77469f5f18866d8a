// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected Event
		err      bool
	}{
		{
			name:     "user created",
			body:     `{"id":"evt_1","type":"user.created","data":{"id":"user_1","email":"a@b.c","first_name":"Ada","last_name":"Lovelace"}}`,
			expected: &UserCreated{User: UserData{ID: "user_1", Email: "a@b.c", FirstName: "Ada", LastName: "Lovelace"}},
		},
		{
			name:     "user deleted",
			body:     `{"id":"evt_1","type":"user.deleted","data":{"id":"user_1"}}`,
			expected: &UserDeleted{User: UserData{ID: "user_1"}},
		},
		{
			name:     "organization updated with domains",
			body:     `{"id":"evt_2","type":"organization.updated","createdAt":"2026-03-01T09:00:00Z","data":{"id":"org_1","name":"School","domains":[{"domain":"school.example"}]}}`,
			expected: &OrganizationUpdated{Organization: OrganizationData{ID: "org_1", Name: "School", Domains: []OrganizationDomain{{Domain: "school.example"}}}},
		},
		{
			name:     "membership created with role slug",
			body:     `{"id":"evt_3","type":"organization_membership.created","data":{"id":"om_1","user_id":"user_1","organization_id":"org_1","role":{"slug":"teacher"},"status":"active"}}`,
			expected: &MembershipCreated{Membership: MembershipData{ID: "om_1", UserID: "user_1", OrganizationID: "org_1", Role: "teacher", Status: "active"}},
		},
		{
			name:     "membership deleted with role string",
			body:     `{"id":"evt_4","type":"organization_membership.deleted","data":{"id":"om_1","user_id":"user_1","organization_id":"org_1","role":"student"}}`,
			expected: &MembershipDeleted{Membership: MembershipData{ID: "om_1", UserID: "user_1", OrganizationID: "org_1", Role: "student"}},
		},
		{
			name:     "unknown type",
			body:     `{"id":"evt_5","type":"session.created","data":{}}`,
			expected: &UnknownEvent{EventType: "session.created"},
		},
		{
			name:     "unknown type without data",
			body:     `{"id":"evt_6","type":"session.created","createdAt":"2026-03-01T09:00:00Z"}`,
			expected: &UnknownEvent{EventType: "session.created"},
		},
		{
			name: "null data on a known type",
			body: `{"id":"evt_1","type":"organization.created","data":null}`,
			err:  true,
		},
		{
			name: "invalid json",
			body: `{"id":`,
			err:  true,
		},
		{
			name: "missing id",
			body: `{"type":"user.created","data":{"id":"user_1"}}`,
			err:  true,
		},
		{
			name: "missing data",
			body: `{"id":"evt_1","type":"user.created"}`,
			err:  true,
		},
		{
			name: "invalid created at",
			body: `{"id":"evt_1","type":"user.created","createdAt":"yesterday","data":{"id":"user_1"}}`,
			err:  true,
		},
		{
			name: "user without id",
			body: `{"id":"evt_1","type":"user.updated","data":{"email":"a@b.c"}}`,
			err:  true,
		},
		{
			name: "membership without organization",
			body: `{"id":"evt_1","type":"organization_membership.created","data":{"id":"om_1","user_id":"user_1"}}`,
			err:  true,
		},
		{
			name: "membership with invalid role",
			body: `{"id":"evt_1","type":"organization_membership.created","data":{"id":"om_1","user_id":"user_1","organization_id":"org_1","role":42}}`,
			err:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, e, err := ParseEvent([]byte(tt.body))

			if tt.err {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedEvent))
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, env.ID)
			assert.Equal(t, tt.expected, e)
			assert.Equal(t, env.Type, e.Type())
		})
	}
}

func TestRoleUnmarshalJSON(t *testing.T) {
	tests := map[string]Role{
		`"admin"`:              "admin",
		`{"slug":"teacher"}`:   "teacher",
		`{"slug":"","name":1}`: "",
	}

	for input, expected := range tests {
		var r Role

		require.NoError(t, json.Unmarshal([]byte(input), &r), input)
		assert.Equal(t, expected, r, input)
	}

	var r Role
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &r))
}

func TestOrganizationDataPrimaryDomain(t *testing.T) {
	o := OrganizationData{Domains: []OrganizationDomain{{Domain: ""}, {Domain: "b.example"}, {Domain: "c.example"}}}
	assert.Equal(t, "b.example", o.PrimaryDomain())

	empty := OrganizationData{}
	assert.Equal(t, "", empty.PrimaryDomain())
}
