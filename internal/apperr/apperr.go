// Package apperr defines the tagged error kinds shared across splat-replay's
// application and infrastructure layers. Orchestration code never uses
// exceptions for control flow: handlers return a typed *Error (or a plain
// wrapped error for truly unclassified failures), and only the HTTP boundary
// converts a Kind into a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind tags an error with the category spec.md §7 assigns it.
type Kind int

const (
	// KindInternal is an unclassified failure; surfaced as 500.
	KindInternal Kind = iota
	// KindValidation is malformed input; recoverable; surfaced as 400.
	KindValidation
	// KindNotFound is a missing asset/resource id; surfaced as 404.
	KindNotFound
	// KindConflict is e.g. starting a recording while one is active; surfaced as 409.
	KindConflict
	// KindRuleViolation is a domain invariant violation; surfaced as 409.
	KindRuleViolation
	// KindAuthentication is an uploader credential problem; surfaced as 401.
	KindAuthentication
	// KindConfiguration is missing/invalid settings; fatal at startup; surfaced as 500.
	KindConfiguration
	// KindDevice is a recorder/capture device not ready; transient; surfaced as 503.
	KindDevice
	// KindRecording is an unexpected recorder response; surfaced as 409 and logged.
	KindRecording
)

// String renders a Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRuleViolation:
		return "rule_violation"
	case KindAuthentication:
		return "authentication"
	case KindConfiguration:
		return "configuration"
	case KindDevice:
		return "device"
	case KindRecording:
		return "recording"
	default:
		return "internal"
	}
}

// HTTPStatus maps a Kind to the status code the HTTP boundary should use.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return 400
	case KindAuthentication:
		return 401
	case KindNotFound:
		return 404
	case KindConflict, KindRuleViolation, KindRecording:
		return 409
	case KindDevice:
		return 503
	default:
		return 500
	}
}

// Error is the tagged error type propagated across layers.
type Error struct {
	Kind    Kind
	Message string
	Field   string // optional, set for KindValidation
	Err     error  // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validation is a convenience constructor for field-level validation errors.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// KindOf extracts the Kind from err, defaulting to KindInternal when err is
// not (or does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
