// Package domain defines typed identifiers shared across the module.
//
// Each entity gets its own UUID-backed type so a member id can never be
// passed where an event id is expected. Construct ids from external input
// via the Parse functions; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "gatherly/pkg/domain-errors"
)

// MemberID identifies a member (or staff user).
type MemberID uuid.UUID

// EventID identifies an event.
type EventID uuid.UUID

// RegistrationID identifies a registration.
type RegistrationID uuid.UUID

// NewMemberID generates a fresh member id.
func NewMemberID() MemberID { return MemberID(uuid.New()) }

// NewEventID generates a fresh event id.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewRegistrationID generates a fresh registration id.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// ParseMemberID constructs a MemberID from external input.
// Errors with CodeInvalidInput when the value is empty, malformed, or nil.
func ParseMemberID(s string) (MemberID, error) {
	u, err := parseUUID(s, "member id")
	return MemberID(u), err
}

// ParseEventID constructs an EventID from external input.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

// ParseRegistrationID constructs a RegistrationID from external input.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration id")
	return RegistrationID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", label)
	}
	return u, nil
}

func (id MemberID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id MemberID) String() string { return uuid.UUID(id).String() }

func (id EventID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id EventID) String() string { return uuid.UUID(id).String() }

func (id RegistrationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }

// MarshalText renders ids as canonical UUID strings in JSON and logs.
func (id MemberID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses a canonical UUID string.
func (id *MemberID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = MemberID(u)
	return nil
}

func (id EventID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *EventID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = EventID(u)
	return nil
}

func (id RegistrationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *RegistrationID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = RegistrationID(u)
	return nil
}
