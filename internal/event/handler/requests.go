package handler

import (
	"strings"
	"time"

	dErrors "gatherly/pkg/domain-errors"
)

// CreateEventRequest is the HTTP request body for POST /events.
type CreateEventRequest struct {
	Name        string  `json:"name"`
	MaxCapacity *int    `json:"max_capacity,omitempty"`
	StartsAt    *string `json:"starts_at,omitempty"`

	parsedStartsAt *time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateEventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if r.MaxCapacity != nil && *r.MaxCapacity <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "max_capacity must be positive when set")
	}
	if r.StartsAt != nil {
		startsAt, err := time.Parse(time.RFC3339, *r.StartsAt)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "starts_at must be RFC 3339")
		}
		r.parsedStartsAt = &startsAt
	}
	return nil
}

// ParsedStartsAt returns the start time parsed during Validate, nil when the
// field was absent.
func (r *CreateEventRequest) ParsedStartsAt() *time.Time { return r.parsedStartsAt }
