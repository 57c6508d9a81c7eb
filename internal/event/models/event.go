// Package models defines the Event aggregate and its derived status.
package models

import (
	"strings"
	"time"

	id "gatherly/pkg/domain"
	dErrors "gatherly/pkg/domain-errors"
)

// Status is the coarse fullness/lifecycle state displayed to members.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusNearlyFull Status = "NEARLY_FULL"
	StatusFull       Status = "FULL"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var validStatuses = map[Status]bool{
	StatusOpen:       true,
	StatusNearlyFull: true,
	StatusFull:       true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported event status %q", s)
	}
	return st, nil
}

// IsTerminal reports whether the status ends the event's registration
// lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// nearlyFullRatio is the confirmed/capacity ratio at which an event is
// surfaced as nearly full.
const nearlyFullRatio = 0.8

// ProjectStatus derives the fullness status from the confirmed count and
// capacity. A nil capacity means unlimited seats, so the event stays OPEN.
func ProjectStatus(confirmedCount int, maxCapacity *int) Status {
	if maxCapacity == nil {
		return StatusOpen
	}
	capacity := *maxCapacity
	switch {
	case confirmedCount >= capacity:
		return StatusFull
	case float64(confirmedCount) >= nearlyFullRatio*float64(capacity):
		return StatusNearlyFull
	default:
		return StatusOpen
	}
}

// Event is the aggregate for a bookable event.
//
// Invariants:
//   - ConfirmedCount <= MaxCapacity whenever MaxCapacity is set
//   - Status == FULL exactly when ConfirmedCount >= MaxCapacity
//   - Status == NEARLY_FULL when ConfirmedCount >= 0.8 * MaxCapacity and
//     the event is not full
//   - ConfirmedCount and the fullness statuses are mutated only by the
//     registration service; COMPLETED/CANCELLED come from the external
//     event lifecycle and are never overwritten by projection
type Event struct {
	ID             id.EventID `json:"id"`
	Name           string     `json:"name"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	MaxCapacity    *int       `json:"max_capacity,omitempty"`
	ConfirmedCount int        `json:"confirmed_count"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewEvent constructs an open event, validating invariants.
func NewEvent(eventID id.EventID, name string, maxCapacity *int, startsAt *time.Time, now time.Time) (*Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event name cannot be empty")
	}
	if len(name) > 256 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event name must be 256 characters or less")
	}
	if maxCapacity != nil && *maxCapacity <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "max capacity must be positive when set")
	}
	return &Event{
		ID:          eventID,
		Name:        name,
		StartsAt:    startsAt,
		MaxCapacity: maxCapacity,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AcceptingRegistrations reports whether new registrations may be taken.
// Full events still accept registrations; they go to the waitlist.
func (e *Event) AcceptingRegistrations() bool {
	return !e.Status.IsTerminal()
}

// AtCapacity reports whether the event has no free seat according to its
// cached state. The registration service combines this with the live count
// of confirmed registrations; the cached signals alone are not authoritative.
func (e *Event) AtCapacity() bool {
	if e.Status == StatusFull {
		return true
	}
	if e.MaxCapacity == nil {
		return false
	}
	return e.ConfirmedCount >= *e.MaxCapacity
}

// ApplySeatTaken records one more confirmed registration and re-projects the
// fullness status from the post-increment count.
func (e *Event) ApplySeatTaken(now time.Time) {
	e.ConfirmedCount++
	e.reproject(now)
}

// ApplySeatFreed records one fewer confirmed registration, flooring at zero,
// and re-projects the fullness status.
func (e *Event) ApplySeatFreed(now time.Time) {
	if e.ConfirmedCount > 0 {
		e.ConfirmedCount--
	}
	e.reproject(now)
}

func (e *Event) reproject(now time.Time) {
	if e.Status.IsTerminal() {
		e.UpdatedAt = now
		return
	}
	e.Status = ProjectStatus(e.ConfirmedCount, e.MaxCapacity)
	e.UpdatedAt = now
}
