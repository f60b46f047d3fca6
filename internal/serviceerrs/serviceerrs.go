package serviceerrs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidAction   = errors.New("invalid review action")
	ErrAlreadyReviewed = errors.New("transaction already reviewed")
	ErrSnapshotExists  = errors.New("snapshot already exists for date")
	ErrUserExists      = errors.New("username already taken")
	ErrUserInactive    = errors.New("user is not active")
	ErrWrongPassword   = errors.New("invalid password")
	ErrTokenExpired    = errors.New("token expired")
)

// ValidationError marks malformed client input; it is never retried,
// the caller must resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
