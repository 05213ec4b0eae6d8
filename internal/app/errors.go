package app

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrUndeletableUser  = errors.New("the owner cannot be deleted")
	ErrCorruptDocument  = errors.New("stored document is corrupt")
	ErrPersist          = errors.New("document changed but could not be saved")
	ErrResetUnconfirmed = errors.New("reset requires confirmation")
)

// ValidationError names the offending field. It matches ErrValidation
// and the underlying cause with errors.Is.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", ErrValidation, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrValidation, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// isPersist reports whether err only means the save failed, in which case
// the command itself was applied.
func isPersist(err error) bool {
	return errors.Is(err, ErrPersist)
}
