package ops

import (
	"errors"
	"fmt"
)

// FailureKind classifies handler failures; it decides the queue-side
// policy (drop, dead-letter, redeliver).
type FailureKind uint

const (
	// FailureValidation: malformed or unknown operation. Dropped to the
	// dead-letter path, never retried.
	FailureValidation FailureKind = iota
	// FailureConstraint: well-formed but violates a store invariant.
	// Dead-lettered for manual review, never silently dropped.
	FailureConstraint
	// FailureTransient: store/blob/outbound I/O failure. The operation
	// stays unacknowledged and the queue redelivers it, bounded by the
	// max attempt count.
	FailureTransient
)

func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "VALIDATION_ERROR"
	case FailureConstraint:
		return "CONSTRAINT_VIOLATION"
	case FailureTransient:
		return "TRANSIENT_IO_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error carries the failure classification alongside the cause.
type Error struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on the failure kind so callers can compare against the
// sentinel constructors' results with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func NewValidationError(message string, err error) *Error {
	return &Error{Kind: FailureValidation, Message: message, Err: err}
}

func NewConstraintError(message string, err error) *Error {
	return &Error{Kind: FailureConstraint, Message: message, Err: err}
}

func NewTransientError(message string, err error) *Error {
	return &Error{Kind: FailureTransient, Message: message, Err: err}
}

// Sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Kind: FailureValidation}
	ErrConstraint = &Error{Kind: FailureConstraint}
	ErrTransient  = &Error{Kind: FailureTransient}
)

// Classify returns the failure kind of err, defaulting unclassified
// errors to transient so the queue's redelivery bound applies.
func Classify(err error) FailureKind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return FailureTransient
}
