package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// NetworkError is a transport failure or a 5xx answer. The request may be retried;
// after an order was created a retry opens a fresh order.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server error %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError means the admin token is missing, expired or rejected.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Message
}

// APIError is any other non-2xx answer, carrying the server message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// IsRetryable reports whether the same request may succeed if sent again.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var nerr *NetworkError
	return errors.As(err, &nerr)
}

// IsAuth reports whether err should end the admin session.
func IsAuth(err error) bool {
	var aerr *AuthError
	return errors.As(err, &aerr)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return nerr.Status
	}
	if IsAuth(err) {
		return http.StatusUnauthorized
	}
	return 0
}
