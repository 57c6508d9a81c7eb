// Package models defines the read models produced by the attendance engine.
// Cancelled registrations are invisible to everything here, even when they
// carry a historical check-in timestamp.
package models

import (
	"time"

	id "gatherly/pkg/domain"
)

// Snapshot is the occupancy picture emitted after every successful check-in
// or undo, and pushed to subscribers. OccupancyPercent is nil for uncapped
// events.
type Snapshot struct {
	EventID          id.EventID   `json:"event_id"`
	MemberID         *id.MemberID `json:"member_id,omitempty"`
	CheckedIn        *bool        `json:"checked_in,omitempty"`
	CheckedInAt      *time.Time   `json:"checked_in_at,omitempty"`
	RegisteredCount  int          `json:"registered_count"`
	CheckedInCount   int          `json:"checked_in_count"`
	OccupancyPercent *float64     `json:"occupancy_percent,omitempty"`
}

// Attendee is one non-cancelled registration with its member resolved.
type Attendee struct {
	MemberID           id.MemberID `json:"user_id"`
	FullName           string      `json:"full_name"`
	Email              string      `json:"email"`
	RegistrationStatus string      `json:"registration_status"`
	CheckedIn          bool        `json:"checked_in"`
	CheckedInAt        *time.Time  `json:"checked_in_at,omitempty"`
}

// AttendeeList is the roster for one event.
type AttendeeList struct {
	EventID         id.EventID `json:"event_id"`
	RegisteredCount int        `json:"registered_count"`
	CheckedInCount  int        `json:"checked_in_count"`
	Attendees       []Attendee `json:"attendees"`
}

// EventSummary is the per-event line on the staff dashboard.
type EventSummary struct {
	EventID          id.EventID `json:"event_id"`
	RegisteredCount  int        `json:"registered_count"`
	CheckedInCount   int        `json:"checked_in_count"`
	OccupancyPercent *float64   `json:"occupancy_percent,omitempty"`
	Status           string     `json:"status"`
	MaxCapacity      *int       `json:"max_capacity,omitempty"`
}

// OccupancyPercent computes checkedIn/capacity*100, nil when uncapped.
func OccupancyPercent(checkedInCount int, maxCapacity *int) *float64 {
	if maxCapacity == nil || *maxCapacity == 0 {
		return nil
	}
	p := float64(checkedInCount) / float64(*maxCapacity) * 100
	return &p
}
