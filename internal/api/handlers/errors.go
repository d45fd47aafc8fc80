package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"Agora/internal/core/comments"
	"Agora/internal/core/feed"
	"Agora/internal/core/posts"
	"Agora/internal/core/users"
)

// maxBodyBytes bounds JSON request bodies; post content is at most 10000 graphemes
const maxBodyBytes = 1 << 20

// ErrorResponse is the envelope of every 4xx and 5xx response
type ErrorResponse struct {
	Errors []ErrorMessage `json:"errors"`
}

// ErrorMessage is a single client-facing error
type ErrorMessage struct {
	Msg string `json:"msg"`
}

// WriteError writes a standardized JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Errors: []ErrorMessage{{Msg: message}}})
}

// WriteJSON writes v as a JSON response body
func WriteJSON(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing left but to log
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}

// DecodeJSON reads a size-limited JSON body into dst, writing the error
// response itself and returning false when the body is unusable
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large (max 1MB)")
			return false
		}
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// HandleServiceError maps domain errors to HTTP responses.
// Not-found and forbidden are reported as 400, matching the API contract
// clients were built against.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, posts.ErrUnauthorized),
		errors.Is(err, feed.ErrUnauthorized),
		errors.Is(err, comments.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "Authentication required")

	case posts.IsValidationError(err),
		feed.IsValidationError(err),
		users.IsValidationError(err),
		comments.IsValidationError(err):
		WriteError(w, http.StatusBadRequest, validationMessage(err))

	case errors.Is(err, posts.ErrNotFound), errors.Is(err, comments.ErrPostNotFound):
		WriteError(w, http.StatusBadRequest, "Post not found")

	case errors.Is(err, posts.ErrForbidden):
		WriteError(w, http.StatusBadRequest, "Not authorized to modify this post")

	case errors.Is(err, users.ErrUserNotFound):
		WriteError(w, http.StatusBadRequest, "User not found")

	case errors.Is(err, users.ErrUsernameTaken), errors.Is(err, users.ErrUserExists):
		WriteError(w, http.StatusBadRequest, err.Error())

	default:
		// Don't leak internal error details to clients
		hlog.FromRequest(r).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("unexpected service error")
		WriteError(w, http.StatusInternalServerError, "An internal error occurred")
	}
}

// validationMessage returns the client-facing text of a validation error
func validationMessage(err error) string {
	var postErr *posts.ValidationError
	if errors.As(err, &postErr) {
		return postErr.Message
	}
	var feedErr *feed.ValidationError
	if errors.As(err, &feedErr) {
		return feedErr.Message
	}
	var userErr *users.ValidationError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	return err.Error()
}
