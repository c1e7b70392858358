package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input with field-level detail. It is
// never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthenticationError indicates a missing or invalid identity for an
// operation that requires one.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication: " + e.Reason
}

// NotFoundError indicates a referenced entity is absent. It is a normal
// negative result, not a system fault.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// NotFound builds a NotFoundError for the named entity.
func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// TransientError marks an infrastructure failure (storage or identity
// collaborator unreachable) as retryable for the transport layer. The core
// itself never retries.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientError unless it already belongs to the
// taxonomy (a typed error from a lower layer keeps its classification).
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		validation *ValidationError
		authn      *AuthenticationError
		notFound   *NotFoundError
		transient  *TransientError
	)
	if errors.As(err, &validation) || errors.As(err, &authn) || errors.As(err, &notFound) || errors.As(err, &transient) {
		return err
	}
	return &TransientError{Op: op, Err: err}
}
