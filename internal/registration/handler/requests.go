package handler

import (
	id "gatherly/pkg/domain"
	dErrors "gatherly/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /registrations.
type RegisterRequest struct {
	EventID string `json:"event_id"`

	parsedEventID id.EventID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	eventID, err := id.ParseEventID(r.EventID)
	if err != nil {
		return err
	}
	r.parsedEventID = eventID
	return nil
}

// ParsedEventID returns the event id parsed during Validate.
func (r *RegisterRequest) ParsedEventID() id.EventID { return r.parsedEventID }

// StaffRegisterRequest is the HTTP request body for POST /employee/registrations.
type StaffRegisterRequest struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`

	parsedMemberID id.MemberID
	parsedEventID  id.EventID
}

// Validate validates and parses the request.
func (r *StaffRegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	memberID, err := id.ParseMemberID(r.UserID)
	if err != nil {
		return err
	}
	eventID, err := id.ParseEventID(r.EventID)
	if err != nil {
		return err
	}
	r.parsedMemberID = memberID
	r.parsedEventID = eventID
	return nil
}

// ParsedMemberID returns the member id parsed during Validate.
func (r *StaffRegisterRequest) ParsedMemberID() id.MemberID { return r.parsedMemberID }

// ParsedEventID returns the event id parsed during Validate.
func (r *StaffRegisterRequest) ParsedEventID() id.EventID { return r.parsedEventID }
