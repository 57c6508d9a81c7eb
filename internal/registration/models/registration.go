// Package models defines the Registration aggregate: the record of one
// member's claim on one event, confirmed or queued.
package models

import (
	"time"

	id "gatherly/pkg/domain"
	dErrors "gatherly/pkg/domain-errors"
)

// Status is the lifecycle state of a registration.
type Status string

const (
	StatusConfirmed  Status = "CONFIRMED"
	StatusWaitlisted Status = "WAITLISTED"
	StatusCancelled  Status = "CANCELLED"
)

// Registration is one member's registration for one event.
//
// Invariants:
//   - exactly one non-cancelled registration per (member, event) pair;
//     enforced by the stores, asserted by the service
//   - WaitlistPosition is set exactly while Status == WAITLISTED; the
//     positions of an event's waitlisted registrations form {1..k} ordered
//     by RequestedAt
//   - cancellation is terminal; no transition leaves CANCELLED
//   - CheckedInAt toggles only while the registration is active; cancellation
//     keeps the historical timestamp but attendance reporting ignores it
type Registration struct {
	ID               id.RegistrationID `json:"id"`
	MemberID         id.MemberID       `json:"member_id"`
	EventID          id.EventID        `json:"event_id"`
	Status           Status            `json:"status"`
	WaitlistPosition *int              `json:"waitlist_position,omitempty"`
	RequestedAt      time.Time         `json:"requested_at"`
	ConfirmedAt      *time.Time        `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	CheckedInAt      *time.Time        `json:"checked_in_at,omitempty"`
}

// NewConfirmed constructs a registration that takes a seat immediately.
func NewConfirmed(memberID id.MemberID, eventID id.EventID, now time.Time) *Registration {
	confirmedAt := now
	return &Registration{
		ID:          id.NewRegistrationID(),
		MemberID:    memberID,
		EventID:     eventID,
		Status:      StatusConfirmed,
		RequestedAt: now,
		ConfirmedAt: &confirmedAt,
	}
}

// NewWaitlisted constructs a registration queued at the given position.
func NewWaitlisted(memberID id.MemberID, eventID id.EventID, position int, now time.Time) *Registration {
	return &Registration{
		ID:               id.NewRegistrationID(),
		MemberID:         memberID,
		EventID:          eventID,
		Status:           StatusWaitlisted,
		WaitlistPosition: &position,
		RequestedAt:      now,
	}
}

// IsActive reports whether the registration still occupies a seat or a
// waitlist slot.
func (r *Registration) IsActive() bool {
	return r.Status != StatusCancelled
}

// IsCheckedIn reports whether the member is currently checked in.
func (r *Registration) IsCheckedIn() bool {
	return r.CheckedInAt != nil
}

// CanCancel checks the cancellation transition.
func (r *Registration) CanCancel() error {
	if r.Status == StatusCancelled {
		return dErrors.New(dErrors.CodeInvariantViolation, "registration is already cancelled")
	}
	return nil
}

// ApplyCancel transitions to CANCELLED. The check-in timestamp is kept as a
// historical record; reporting filters on IsActive instead.
func (r *Registration) ApplyCancel(now time.Time) {
	r.Status = StatusCancelled
	r.WaitlistPosition = nil
	cancelledAt := now
	r.CancelledAt = &cancelledAt
}

// ApplyPromotion moves a waitlisted registration into a confirmed seat.
func (r *Registration) ApplyPromotion(now time.Time) {
	r.Status = StatusConfirmed
	r.WaitlistPosition = nil
	confirmedAt := now
	r.ConfirmedAt = &confirmedAt
}

// CanCheckIn checks the check-in guard: cancelled registrations are not
// valid attendance targets.
func (r *Registration) CanCheckIn() error {
	if !r.IsActive() {
		return dErrors.New(dErrors.CodeInvalidInput, "registration is cancelled")
	}
	return nil
}

// ApplyCheckIn sets the check-in timestamp. Idempotent: an existing
// timestamp is left untouched.
func (r *Registration) ApplyCheckIn(now time.Time) {
	if r.CheckedInAt != nil {
		return
	}
	checkedInAt := now
	r.CheckedInAt = &checkedInAt
}

// ApplyUndoCheckIn clears the check-in timestamp. Idempotent.
func (r *Registration) ApplyUndoCheckIn() {
	r.CheckedInAt = nil
}
