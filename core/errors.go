package core

import "github.com/pkg/errors"

// FieldError ties an error message to the struct field that caused it; the
// HTTP layer renders a set of them as a field->message object.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a client-fixable error: a bad request body, a broken
// domain rule. It may carry field-level detail, a bare message, or both.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// shutdownError signals that the service hit an unrecoverable state and
// should stop accepting work.
type shutdownError struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdownError{message: msg}
}

func (s shutdownError) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdownError)
	return ok
}
