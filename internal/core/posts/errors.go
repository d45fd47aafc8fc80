package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post does not exist or was deleted
	ErrNotFound = errors.New("post not found")

	// ErrForbidden is returned when an authenticated user mutates a post they do not own
	ErrForbidden = errors.New("not authorized to modify this post")

	// ErrUnauthorized is returned when no caller identity is present
	ErrUnauthorized = errors.New("authentication required")

	// ErrContentEmpty is returned for empty or whitespace-only content
	ErrContentEmpty = errors.New("content is required")

	// ErrContentTooLong is returned when content exceeds maxContentGraphemes
	ErrContentTooLong = errors.New("content exceeds 10000 graphemes")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Err     error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// StorageError wraps a persistence-layer failure.
// Its message is for logs only; handlers never send it to clients.
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError checks if error is a storage error
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// wrapStorage passes domain errors through and wraps everything else
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) || IsStorageError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// WrapStorage is wrapStorage for sibling services that read posts
func WrapStorage(op string, err error) error {
	return wrapStorage(op, err)
}
