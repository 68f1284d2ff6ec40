package common

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure in the pipeline resolves to exactly one of
// these, so callers can branch with errors.Is without string matching.
var (
	// ErrValidation: a required field is missing. Local, no side effects.
	ErrValidation = errors.New("validation failed")
	// ErrExtraction: the source document could not be read or parsed.
	ErrExtraction = errors.New("extraction failed")
	// ErrRemoteSync: the board push failed, or returned a failure-shaped
	// success. The local store must not be written after this.
	ErrRemoteSync = errors.New("remote sync failed")
	// ErrPersistence: the local write failed after a successful remote
	// push. The board has the item and we do not: fatal inconsistency.
	ErrPersistence = errors.New("persistence failed after remote sync")
	// ErrSourceIO: mailbox connect/read failure. Aborts the current fetch.
	ErrSourceIO = errors.New("source io failure")
)

// AppError carries a stable code, a human-readable message, and the
// underlying cause. Unwrap exposes the kind sentinel for errors.Is.
type AppError struct {
	Code    string
	Message string
	Kind    error
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: "VALIDATION", Message: message, Kind: ErrValidation}
}

func NewExtractionError(message string, cause error) *AppError {
	return &AppError{Code: "EXTRACTION", Message: message, Kind: ErrExtraction, Cause: cause}
}

func NewRemoteSyncError(message string, cause error) *AppError {
	return &AppError{Code: "REMOTE_SYNC", Message: message, Kind: ErrRemoteSync, Cause: cause}
}

func NewPersistenceError(message string, cause error) *AppError {
	return &AppError{Code: "PERSISTENCE", Message: message, Kind: ErrPersistence, Cause: cause}
}

func NewSourceIOError(message string, cause error) *AppError {
	return &AppError{Code: "SOURCE_IO", Message: message, Kind: ErrSourceIO, Cause: cause}
}

// WrapError annotates err with message, preserving the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
