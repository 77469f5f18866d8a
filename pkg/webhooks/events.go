// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrMalformedEvent = errors.New("malformed event")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Event is one of the variants below, the set is closed by the unexported method
type Event interface {
	Type() string
	event()
}

type UserCreated struct{ User UserData }
type UserUpdated struct{ User UserData }
type UserDeleted struct{ User UserData }

type OrganizationCreated struct{ Organization OrganizationData }
type OrganizationUpdated struct{ Organization OrganizationData }
type OrganizationDeleted struct{ Organization OrganizationData }

type MembershipCreated struct{ Membership MembershipData }
type MembershipUpdated struct{ Membership MembershipData }
type MembershipDeleted struct{ Membership MembershipData }

// UnknownEvent is accepted and ignored
type UnknownEvent struct{ EventType string }

func (*UserCreated) Type() string { return TypeUserCreated }
func (*UserUpdated) Type() string { return TypeUserUpdated }
func (*UserDeleted) Type() string { return TypeUserDeleted }
func (*OrganizationCreated) Type() string { return TypeOrganizationCreated }
func (*OrganizationUpdated) Type() string { return TypeOrganizationUpdated }
func (*OrganizationDeleted) Type() string { return TypeOrganizationDeleted }
func (*MembershipCreated) Type() string { return TypeMembershipCreated }
func (*MembershipUpdated) Type() string { return TypeMembershipUpdated }
func (*MembershipDeleted) Type() string { return TypeMembershipDeleted }
func (e *UnknownEvent) Type() string { return e.EventType }

func (*UserCreated) event() {}
func (*UserUpdated) event() {}
func (*UserDeleted) event() {}
func (*OrganizationCreated) event() {}
func (*OrganizationUpdated) event() {}
func (*OrganizationDeleted) event() {}
func (*MembershipCreated) event() {}
func (*MembershipUpdated) event() {}
func (*MembershipDeleted) event() {}
func (*UnknownEvent) event() {}

func decodeData[T any](raw json.RawMessage) (*T, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}

	v := new(T)

	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("%w: invalid data: %s", ErrMalformedEvent, err)
	}

	if err := validate.Struct(v); err != nil {
		return nil, fmt.Errorf("%w: invalid data: %s", ErrMalformedEvent, err)
	}

	return v, nil
}

// ParseEvent decodes and validates an envelope and its data, every error
// wraps ErrMalformedEvent
func ParseEvent(body []byte) (*Envelope, Event, error) {
	env := new(Envelope)

	if err := json.Unmarshal(body, env); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrMalformedEvent, err)
	}

	if err := validate.Struct(env); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrMalformedEvent, err)
	}

	e, err := decodeEvent(env)
	if err != nil {
		return nil, nil, err
	}

	return env, e, nil
}

func decodeEvent(env *Envelope) (Event, error) {
	switch env.Type {
	case TypeUserCreated, TypeUserUpdated, TypeUserDeleted:
		u, err := decodeData[UserData](env.Data)
		if err != nil {
			return nil, err
		}

		switch env.Type {
		case TypeUserCreated:
			return &UserCreated{User: *u}, nil
		case TypeUserUpdated:
			return &UserUpdated{User: *u}, nil
		default:
			return &UserDeleted{User: *u}, nil
		}
	case TypeOrganizationCreated, TypeOrganizationUpdated, TypeOrganizationDeleted:
		o, err := decodeData[OrganizationData](env.Data)
		if err != nil {
			return nil, err
		}

		switch env.Type {
		case TypeOrganizationCreated:
			return &OrganizationCreated{Organization: *o}, nil
		case TypeOrganizationUpdated:
			return &OrganizationUpdated{Organization: *o}, nil
		default:
			return &OrganizationDeleted{Organization: *o}, nil
		}
	case TypeMembershipCreated, TypeMembershipUpdated, TypeMembershipDeleted:
		m, err := decodeData[MembershipData](env.Data)
		if err != nil {
			return nil, err
		}

		switch env.Type {
		case TypeMembershipCreated:
			return &MembershipCreated{Membership: *m}, nil
		case TypeMembershipUpdated:
			return &MembershipUpdated{Membership: *m}, nil
		default:
			return &MembershipDeleted{Membership: *m}, nil
		}
	default:
		return &UnknownEvent{EventType: env.Type}, nil
	}
}
