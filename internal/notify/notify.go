// Package notify carries registration outcomes and attendance snapshots to
// the outside world. Everything here is fire and forget: dispatch failures
// are logged by callers and never affect the originating operation.
package notify

import (
	"context"
	"log/slog"
	"time"

	"gatherly/internal/registration/models"
)

// Kind identifies the registration outcome being announced.
type Kind string

const (
	KindConfirmed  Kind = "registration_confirmed"
	KindWaitlisted Kind = "registration_waitlisted"
	KindCancelled  Kind = "registration_cancelled"
	KindPromoted   Kind = "registration_promoted"
)

// Category distinguishes who initiated the registration, so downstream
// templates can address the member differently.
type Category string

const (
	CategoryMemberInitiated Category = "member_initiated"
	CategoryStaffInitiated  Category = "staff_initiated"
)

// Notification is the transport-agnostic payload for one registration
// outcome.
type Notification struct {
	Kind             Kind      `json:"kind"`
	Category         Category  `json:"category"`
	RegistrationID   string    `json:"registration_id"`
	MemberID         string    `json:"member_id"`
	EventID          string    `json:"event_id"`
	Status           string    `json:"status"`
	WaitlistPosition *int      `json:"waitlist_position,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ForRegistration builds a notification from a registration's current
// status.
func ForRegistration(reg *models.Registration, category Category) Notification {
	var kind Kind
	switch reg.Status {
	case models.StatusWaitlisted:
		kind = KindWaitlisted
	case models.StatusCancelled:
		kind = KindCancelled
	default:
		kind = KindConfirmed
	}
	return build(reg, kind, category)
}

// ForPromotion builds the notification for a waitlisted registration that
// was just promoted into a freed seat.
func ForPromotion(reg *models.Registration, category Category) Notification {
	return build(reg, KindPromoted, category)
}

func build(reg *models.Registration, kind Kind, category Category) Notification {
	return Notification{
		Kind:             kind,
		Category:         category,
		RegistrationID:   reg.ID.String(),
		MemberID:         reg.MemberID.String(),
		EventID:          reg.EventID.String(),
		Status:           string(reg.Status),
		WaitlistPosition: reg.WaitlistPosition,
		OccurredAt:       time.Now().UTC(),
	}
}

// Dispatcher delivers registration outcome notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
	Close() error
}

// LogDispatcher logs notifications instead of delivering them. Used when no
// broker is configured.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a Dispatcher that only logs.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, n Notification) error {
	d.logger.InfoContext(ctx, "notification",
		"kind", n.Kind,
		"category", n.Category,
		"registration_id", n.RegistrationID,
		"event_id", n.EventID,
	)
	return nil
}

func (d *LogDispatcher) Close() error { return nil }
