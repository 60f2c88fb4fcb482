package orchestrator

import (
	"errors"
	"fmt"
)

var (
	ErrBusy              = errors.New("a submission is already in flight")
	ErrSupportRequired   = errors.New("payment verification failed; contact support before booking again")
	ErrAlreadyConfirmed  = errors.New("booking already confirmed; start a new booking")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrMissingToken      = errors.New("backend confirmed without a token")
)

// GatewayError reports a widget failure or dismissal. No charge is retained.
type GatewayError struct {
	Dismissed   bool
	Description string
	Err         error
}

func (e *GatewayError) Error() string {
	if e.Dismissed {
		return "payment cancelled"
	}
	if e.Description != "" {
		return "payment failed: " + e.Description
	}
	return "payment failed"
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// VerificationError is terminal for the submission. The charge may be real, so the
// payment references are kept for support.
type VerificationError struct {
	OrderID   string
	PaymentID string
	Err       error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("payment verification failed (order %s, payment %s): contact support", e.OrderID, e.PaymentID)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
