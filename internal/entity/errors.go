package entity

import (
	"errors"
	"fmt"
)

// Domain errors. Store and service code wraps these with context via
// fmt.Errorf("...: %w", err); the HTTP layer maps them to status codes
// with errors.Is.
var (
	// ErrNotFound means a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the request carried no valid merchant credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation means the input is malformed or violates a model rule.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock means a requested quantity exceeds the listing's
	// available quantity. Distinct from ErrValidation so the boundary can
	// surface it as an expectation failure rather than a bad request.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrProductAttached means the listing already has a product and cannot
	// be attached to another one.
	ErrProductAttached = errors.New("listing already has a product attached")
)

// Validationf builds an ErrValidation with a human-readable reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound naming the missing entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
