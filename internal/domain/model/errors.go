package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for order construction errors. These allow errors.Is from callers.
var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidField = errors.New("invalid field")
)

// MissingFieldError reports a required field that was absent or blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// Is reports kind equality for errors.Is.
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// InvalidFieldError reports a field whose value is malformed or outside its domain.
type InvalidFieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q (%q): %s", e.Field, e.Value, e.Reason)
}

// Is reports kind equality for errors.Is.
func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidField }
