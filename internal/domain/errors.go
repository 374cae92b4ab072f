package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a request rejected before any model call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// EngineError reports a transport, timeout or payload failure talking to the
// model or the gateway. It is transient; the caller may retry.
type EngineError struct {
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError wraps err as an EngineError with a user-facing message.
func NewEngineError(message string, err error) *EngineError {
	return &EngineError{Message: message, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsEngine reports whether err is an EngineError.
func IsEngine(err error) bool {
	var e *EngineError
	return errors.As(err, &e)
}
