package gateway

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse marks a backend response that decoded but failed shape
// validation. The masked operations treat it exactly like a network failure.
var ErrInvalidResponse = errors.New("gateway: invalid response shape")

// AuthenticationError is the only failure the gateway surfaces to callers.
// It covers both rejected credentials and an unreachable backend, since the
// console cannot distinguish the two without a response.
type AuthenticationError struct {
	Email string
	Err   error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Email, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
