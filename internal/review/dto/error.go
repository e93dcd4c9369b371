package dto

import "errors"

// Review gate sentinel errors, mapped to HTTP statuses by the handlers.
var (
	ErrNotAuthorized    = errors.New("reviewer lacks the required capability")
	ErrReviewerRequired = errors.New("reviewer identity required")
	ErrValidation       = errors.New("invalid request")
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
