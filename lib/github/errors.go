package github

import (
	"errors"
	"fmt"
)

var (
	// the token is invalid or expired, nothing in this run can succeed
	ErrAuthentication = errors.New("invalid or expired github token")
	// the token is valid but lacks permission for the resource
	ErrForbidden = errors.New("access forbidden")
	// the resource does not exist
	ErrNotFound = errors.New("resource not found")
)

// RateLimitError means the API quota is exhausted for this token.
// It is terminal for the remainder of a run.
type RateLimitError struct {
	Operation string
	Body      string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: github api rate limit exceeded: %s", e.Operation, e.Body)
}

// APIError is any other non-2xx response. Callers treat it as a
// per-item failure rather than a terminal one.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: github api returned status %d: %s", e.Operation, e.Status, e.Body)
}

// IsTerminal reports whether an error invalidates the rest of the run
// (bad credentials or an exhausted quota).
func IsTerminal(err error) bool {
	var rateErr *RateLimitError
	return errors.Is(err, ErrAuthentication) || errors.As(err, &rateErr)
}
