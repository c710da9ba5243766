package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrForbidden          = errors.New("access forbidden")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrAdminNotConfigured = fmt.Errorf("admin credentials not configured: %w", ErrServiceUnavailable)
)

var (
	ErrConflict = errors.New("conflict")
	// ErrSubmissionInProgress is returned while another request holding the
	// same Idempotency-Key has not finished.
	ErrSubmissionInProgress = fmt.Errorf("submission with this idempotency key is in progress: %w", ErrConflict)
)

// FieldViolation describes one caller-fixable problem with the input.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when required input is missing or malformed.
type ValidationError struct {
	Violations []FieldViolation
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Violations: []FieldViolation{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

// StorageError wraps any failure of the document store. Its text is for logs
// only and must never be returned to a caller.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindUnavailable
	KindStorage
	KindConflict
)

// KindOf reports the Kind of err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	var ve *ValidationError
	var se *StorageError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrServiceUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.As(err, &se):
		return KindStorage
	default:
		return KindInternal
	}
}
