package comments

import "errors"

var (
	// ErrPostNotFound indicates the commented post doesn't exist or was deleted
	ErrPostNotFound = errors.New("post not found")

	// ErrContentEmpty indicates comment content is empty
	ErrContentEmpty = errors.New("comment content is required")

	// ErrContentTooLong indicates comment content exceeds 10000 graphemes
	ErrContentTooLong = errors.New("comment content exceeds 10000 graphemes")

	// ErrUnauthorized indicates there is no authenticated commenter
	ErrUnauthorized = errors.New("authentication required")
)

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrContentEmpty) ||
		errors.Is(err, ErrContentTooLong)
}
