package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Record errors: the record is rejected, the batch continues
	ErrInvalidInputRecord = errors.New("invalid input record")
	ErrInvalidParameters  = errors.New("invalid parameters")
	ErrNumericDomain      = errors.New("numeric domain error")

	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Pipeline errors
	ErrNoSegments        = errors.New("document produced no text segments")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrExtractorMissing  = errors.New("no extractor configured")
)

// RecordError names the record of a batch that was rejected and why.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Error constructors with context
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInputRecord, field, reason)
}

func NewParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameters, field, reason)
}

func NewNumericDomainError(reason string) error {
	return fmt.Errorf("%w: %s", ErrNumericDomain, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRecordError reports whether err rejects a single record rather than the batch.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrInvalidInputRecord) ||
		errors.Is(err, ErrInvalidParameters) ||
		errors.Is(err, ErrNumericDomain)
}

// ErrorKind returns a stable label for the record error class of err.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, ErrNumericDomain):
		return "numeric_domain"
	case errors.Is(err, ErrInvalidInputRecord):
		return "invalid_input_record"
	default:
		return "internal"
	}
}
