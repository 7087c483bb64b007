package api

import (
	"fmt"
	"net/http"

	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
)

// ErrUnauthorized matches any *StatusError carrying a 401.
var ErrUnauthorized = clienterrors.ErrUnauthorized

// StatusError is returned for every non-2xx backend response.
type StatusError struct {
	StatusCode int
	Message    string // backend "message" field, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Title is a short user-facing heading for the failure.
func (e *StatusError) Title() string {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return "Invalid Request"
	case http.StatusUnauthorized:
		return "Authentication Required"
	case http.StatusForbidden:
		return "Access Denied"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusUnprocessableEntity:
		return "Validation Error"
	case http.StatusTooManyRequests:
		return "Rate Limited"
	case http.StatusServiceUnavailable:
		return "Service Unavailable"
	}
	if e.StatusCode >= 500 {
		return "Server Error"
	}
	return "Request Error"
}

// Description prefers the backend's message and falls back to a generic one per status.
func (e *StatusError) Description() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.StatusCode {
	case http.StatusBadRequest:
		return "Please check your input and try again"
	case http.StatusUnauthorized:
		return "Please sign in to continue"
	case http.StatusForbidden:
		return "You don't have permission to perform this action"
	case http.StatusNotFound:
		return "The requested resource was not found"
	case http.StatusConflict:
		return "This action conflicts with existing data"
	case http.StatusUnprocessableEntity:
		return "Please check your input data"
	case http.StatusTooManyRequests:
		return "Too many requests. Please try again later"
	case http.StatusInternalServerError:
		return "Something went wrong on our end. Please try again"
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable"
	}
	if e.StatusCode >= 500 {
		return "Something went wrong on our end"
	}
	return "There was a problem with your request"
}
