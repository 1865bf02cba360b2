package gateway

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("gateway: object not found")

// Error is returned when the gateway declines or fails a request.
type Error struct {
	Op         string
	Code       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
