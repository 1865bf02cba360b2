package service

import (
	"errors"
	"fmt"
)

var (
	ErrChargeNotFound = errors.New("charge not found")
	ErrBadAuth        = errors.New("bad auth")
)

// ValidationError is returned before any gateway or ledger call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
