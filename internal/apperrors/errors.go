// Package apperrors defines the error taxonomy shared by repositories,
// services and handlers, and its translation to HTTP status codes.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks missing or malformed input, such as empty comment
	// text or a post with neither text nor image.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced user, post or notification that does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an actor lacking rights over the target entity,
	// such as deleting another user's post or notification.
	ErrForbidden = errors.New("forbidden")

	// ErrSelfReference marks an attempt to follow or unfollow oneself.
	ErrSelfReference = errors.New("self reference")

	// ErrUnauthorized marks a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// Status maps an error to its HTTP status code. Anything outside the
// taxonomy is treated as an unexpected store or collaborator failure.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSelfReference):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
