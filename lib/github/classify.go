package github

import (
	"fmt"
	"net/http"
	"strings"
)

// bodies attached to errors are truncated so a misbehaving server
// can't blow up log lines
const maxDiagnosticBody = 512

type result struct {
	body     []byte
	notFound bool
}

// classify maps an API response to either a usable payload or a typed
// failure. 404 is deliberately not an error: callers treat a missing
// user as empty data and move on.
func classify(status int, body []byte, operation string) (result, error) {
	switch status {
	case http.StatusOK:
		return result{body: body}, nil
	case http.StatusNoContent:
		return result{}, nil
	case http.StatusUnauthorized:
		return result{}, fmt.Errorf("%s: %w", operation, ErrAuthentication)
	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(string(body)), "rate limit") {
			return result{}, &RateLimitError{Operation: operation, Body: truncateBody(body)}
		}
		return result{}, fmt.Errorf("%s: %w", operation, ErrForbidden)
	case http.StatusNotFound:
		return result{notFound: true}, nil
	default:
		return result{}, &APIError{Operation: operation, Status: status, Body: truncateBody(body)}
	}
}

func truncateBody(body []byte) string {
	if len(body) > maxDiagnosticBody {
		return string(body[:maxDiagnosticBody])
	}
	return string(body)
}
