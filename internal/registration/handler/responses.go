package handler

import (
	"time"

	"gatherly/internal/registration/models"
	id "gatherly/pkg/domain"
)

// RegistrationResponse is the HTTP representation of a registration.
type RegistrationResponse struct {
	ID               id.RegistrationID `json:"id"`
	MemberID         id.MemberID       `json:"member_id"`
	EventID          id.EventID        `json:"event_id"`
	Status           string            `json:"status"`
	WaitlistPosition *int              `json:"waitlist_position,omitempty"`
	RequestedAt      time.Time         `json:"requested_at"`
	ConfirmedAt      *time.Time        `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
}

// FromRegistration converts a domain registration into its HTTP shape.
func FromRegistration(reg *models.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:               reg.ID,
		MemberID:         reg.MemberID,
		EventID:          reg.EventID,
		Status:           string(reg.Status),
		WaitlistPosition: reg.WaitlistPosition,
		RequestedAt:      reg.RequestedAt,
		ConfirmedAt:      reg.ConfirmedAt,
		CancelledAt:      reg.CancelledAt,
	}
}
