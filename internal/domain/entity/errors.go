package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrDuplicateArticle indicates that an article with the same URL already
	// exists. The store's URL uniqueness constraint is the dedup authority;
	// callers treat this as a benign skip, not a failure.
	ErrDuplicateArticle = errors.New("article with this URL already exists")

	// ErrDuplicateSource indicates that a source with the same feed URL
	// already exists.
	ErrDuplicateSource = errors.New("source with this feed URL already exists")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
