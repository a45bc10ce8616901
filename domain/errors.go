package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeInvalid    ErrorCode = "INVALID"
	ErrCodeConflict   ErrorCode = "CONFLICT"
	ErrCodeDownstream ErrorCode = "DOWNSTREAM"
	ErrCodeInternal   ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrBusinessNotFound = NewError(ErrCodeNotFound, "business not found")
	ErrCustomerNotFound = NewError(ErrCodeNotFound, "customer not found")
	ErrReferralNotFound = NewError(ErrCodeNotFound, "referral not found")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidRating    = NewError(ErrCodeInvalid, "rating must be between 1 and 5")
	ErrInvalidAmount    = NewError(ErrCodeInvalid, "amount must not be negative")
	ErrVersionConflict  = NewError(ErrCodeConflict, "customer was modified concurrently")
	ErrBusinessExists   = NewError(ErrCodeConflict, "business id already exists")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
