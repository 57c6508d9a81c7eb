package testutil

import (
	"net/http"

	id "gatherly/pkg/domain"
	"gatherly/pkg/requestcontext"
)

// WithMemberID adds a member ID to the request context.
// This simulates what the session middleware would do for authenticated
// requests. If the memberID is not a valid UUID, it will not be added.
func WithMemberID(req *http.Request, memberID string) *http.Request {
	if parsed, err := id.ParseMemberID(memberID); err == nil {
		return req.WithContext(requestcontext.WithMemberID(req.Context(), parsed))
	}
	return req
}

// WithStaff marks the request context as belonging to a staff member.
func WithStaff(req *http.Request, memberID string) *http.Request {
	req = WithMemberID(req, memberID)
	return req.WithContext(requestcontext.WithStaff(req.Context(), true))
}
