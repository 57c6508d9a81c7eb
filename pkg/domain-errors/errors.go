// Package domainerrors provides coded errors for domain and service layers.
//
// Services return these instead of raw errors so transport layers can map
// outcomes to HTTP statuses without string matching, and so callers cannot
// accidentally ignore a conflict. Infrastructure layers return
// pkg/platform/sentinel errors; services translate them into coded errors at
// the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and control flow.
type Code string

const (
	// CodeInvalidInput marks input rejected at a trust boundary (bad id,
	// unsupported enum value).
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks a malformed request body or parameters.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks an absent member, event, or registration.
	CodeNotFound Code = "not_found"
	// CodeConflict marks expected business conflicts: duplicate
	// registration, event not accepting, capacity race lost.
	CodeConflict Code = "conflict"
	// CodeForbidden marks an authenticated caller without the required role.
	CodeForbidden Code = "forbidden"
	// CodeInvariantViolation marks a broken model invariant. These indicate
	// bugs, not user mistakes.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error with a stable, user-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/As; the message is what callers see.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is shorthand for HasCode, mirroring errors.Is call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so unexpected failures never leak detail to clients.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message from err. Uncoded errors get a
// generic message; their detail belongs in logs, not responses.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
