package service

import (
	"errors"

	"slotbook/internal/validation"
)

var (
	ErrUnknownPackage     = errors.New("unknown package")
	ErrInvalidSignature   = errors.New("payment signature mismatch")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("too many attempts")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUploadRequired     = errors.New("file is required")
)

func invalid(field, msg string) error {
	return &validation.ValidationError{Fields: []validation.FieldError{{Field: field, Rule: "invalid", Message: msg}}}
}
