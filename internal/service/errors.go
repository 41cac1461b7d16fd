package service

import (
	"errors"
	"fmt"

	"github.com/hlsrec/hls-recommender-go/internal/db"
	"github.com/hlsrec/hls-recommender-go/internal/repository"
)

// ValidationError represents rejected client input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError names a missing user, video or job.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// TranscodeError reports an encoder failure. No catalog entry was created.
type TranscodeError struct {
	Diagnostics string
}

func (e *TranscodeError) Error() string {
	return "video conversion failed"
}

// ProcessingError represents an internal failure while handling a request.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// storeError maps a store error to a NotFoundError where the store reported a
// missing or vanished record, to a ValidationError for a value outside a
// column's range, otherwise to a ProcessingError.
func storeError(err error, message, resource string, id int64) error {
	var missing *repository.MissingRecordError
	switch {
	case errors.As(err, &missing):
		return &NotFoundError{Resource: missing.Entity, ID: fmt.Sprint(missing.ID)}
	case db.IsNotFound(err), db.IsForeignKeyViolation(err):
		return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
	case db.IsCheckViolation(err):
		return &ValidationError{Message: fmt.Sprintf("%s: value out of range (%s)", resource, db.ConstraintName(err))}
	}
	return &ProcessingError{Message: message, Cause: err}
}
