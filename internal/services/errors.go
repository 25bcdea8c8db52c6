package services

import "fmt"

// ErrorKind classifies a goal validation failure. Validation errors are
// caller mistakes and map to 422-style responses; domain errors are
// unexpected states and map to 400-style responses.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindDomain     ErrorKind = "domain"
)

// ValidationError is a structured goal validation failure.
type ValidationError struct {
	Message string
	Kind    ErrorKind
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
		Kind:    ErrorKindValidation,
	}
}

func newDomainError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
		Kind:    ErrorKindDomain,
	}
}
