package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindInvalidArgument marks malformed or out-of-range client input.
	KindInvalidArgument Kind = iota + 1
	// KindNotFound marks a well-formed query that matched zero rows.
	KindNotFound
	// KindUnavailable marks an unreachable store or an exceeded query timeout.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is the single failure type crossing layer boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument creates an invalid-argument fault.
func InvalidArgument(format string, a ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, a...)}
}

// NotFound creates a not-found fault.
func NotFound(format string, a ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, a...)}
}

// Unavailable creates an unavailable fault wrapping the store-level cause.
func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// KindOf extracts the fault kind from err, or 0 when err is not a fault.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// IsInvalidArgument reports whether err is an invalid-argument fault.
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }

// IsNotFound reports whether err is a not-found fault.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsUnavailable reports whether err is an unavailable fault.
func IsUnavailable(err error) bool { return KindOf(err) == KindUnavailable }
