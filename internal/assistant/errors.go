package assistant

import (
	"fmt"
)

// OracleUnavailableError reports that the intent oracle could not be reached
// or is not configured. Timeouts of the oracle call land here too.
type OracleUnavailableError struct {
	Err error
}

func (e *OracleUnavailableError) Error() string {
	return fmt.Sprintf("oracle unavailable: %v", e.Err)
}

func (e *OracleUnavailableError) Unwrap() error { return e.Err }

// ClassificationError reports an oracle answer that could not be decoded
// into a Decision.
type ClassificationError struct {
	Raw string
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// CapabilityError is an expected failure reported by a capability port
// (API error, missing auth, generation failure). Message is shown to the user.
type CapabilityError struct {
	Message string
}

// NewCapabilityError formats a CapabilityError message.
func NewCapabilityError(format string, args ...any) *CapabilityError {
	return &CapabilityError{Message: fmt.Sprintf(format, args...)}
}

func (e *CapabilityError) Error() string { return e.Message }

// PreconditionError is raised by the dispatcher when a parameter or a
// context field required by an intent is missing. Message is shown to the user.
type PreconditionError struct {
	Intent  Intent
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Intent, e.Message)
}

// actionError wraps a CapabilityError with the action that was attempted,
// so the reply reads "Error searching emails: <provider message>".
type actionError struct {
	action string
	cause  *CapabilityError
}

func (e *actionError) Error() string {
	return fmt.Sprintf("Error %s: %s", e.action, e.cause.Message)
}

func (e *actionError) Unwrap() error { return e.cause }
