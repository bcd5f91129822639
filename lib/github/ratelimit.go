package github

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RateLimitStatus is a read-only snapshot of the core API quota.
type RateLimitStatus struct {
	Remaining int
	Reset     time.Time
}

func (c *Client) RateLimit(ctx context.Context) (RateLimitStatus, error) {
	res, err := c.http.R().SetContext(ctx).Get("/rate_limit")
	if err != nil {
		return RateLimitStatus{}, err
	}
	r, err := classify(res.StatusCode(), res.Body(), "check rate limit")
	if err != nil {
		return RateLimitStatus{}, err
	}
	if r.notFound {
		return RateLimitStatus{}, fmt.Errorf("check rate limit: %w", ErrNotFound)
	}

	var payload struct {
		Resources struct {
			Core struct {
				Remaining int   `json:"remaining"`
				Reset     int64 `json:"reset"`
			} `json:"core"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(r.body, &payload); err != nil {
		return RateLimitStatus{}, fmt.Errorf("check rate limit: %w", err)
	}

	return RateLimitStatus{
		Remaining: payload.Resources.Core.Remaining,
		Reset:     time.Unix(payload.Resources.Core.Reset, 0),
	}, nil
}
