// internal/app/system/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind classifies an error into one of the API's error classes. Each kind
// maps to exactly one HTTP status code so that handlers never pick status
// codes ad hoc.
type Kind int

const (
	KindValidation Kind = iota // missing/malformed required fields
	KindAuth                   // missing/invalid/expired token
	KindForbidden              // authenticated but lacking role/permission
	KindSuspended              // account temporarily disabled
	KindNotFound               // no matching record or unmatched route
	KindConflict               // uniqueness violation or business-rule clash
	KindServer                 // unexpected store or webhook failure
)

// Error is the one error type handlers inspect. Internal is the underlying
// cause; it is logged server-side and never serialized to the caller.
type Error struct {
	Kind     Kind
	Message  string
	Fields   []string  // offending field names for validation errors
	ResumeAt time.Time // set for suspended accounts
	Internal error
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Internal }

// Status returns the fixed HTTP status for the error's kind.
//
// Conflict maps to 400: the portal's public contract reports duplicate
// registrations and capacity clashes as bad requests, and existing clients
// depend on that.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindSuspended:
		return http.StatusLocked
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports missing or malformed required fields.
func Validation(fields ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "missing required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// Validationf reports a malformed-input condition with a custom message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Auth reports a missing, invalid, or expired credential.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Forbidden reports an authenticated caller without the required role or
// permission.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Suspended reports a temporarily disabled account and when it resumes.
func Suspended(resumeAt time.Time) *Error {
	return &Error{
		Kind:     KindSuspended,
		Message:  "account suspended until " + resumeAt.UTC().Format(time.RFC3339),
		ResumeAt: resumeAt,
	}
}

// NotFound reports a missing record or unmatched route.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict reports a uniqueness violation or business-rule clash with a
// domain-readable message (never the raw store error).
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Server wraps an unexpected failure. The safe message is returned to the
// caller; err is kept for server-side logging only.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Message: "internal server error", Internal: err}
}

// From converts any error into an *Error. Errors that are not already an
// *Error are treated as unexpected server failures.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Server(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
