package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Profile is the subset of a GitHub user we base follow decisions on.
// Fetched fresh per evaluation, never cached across runs.
type Profile struct {
	Login     string `json:"login"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`
}

// Viewer fetches the authenticated user's own profile.
func (c *Client) Viewer(ctx context.Context) (*Profile, error) {
	res, err := c.http.R().SetContext(ctx).Get("/user")
	if err != nil {
		return nil, err
	}
	r, err := classify(res.StatusCode(), res.Body(), "get authenticated user")
	if err != nil {
		return nil, err
	}
	if r.notFound {
		return nil, fmt.Errorf("get authenticated user: %w", ErrNotFound)
	}

	var profile Profile
	if err := json.Unmarshal(r.body, &profile); err != nil {
		return nil, fmt.Errorf("get authenticated user: %w", err)
	}
	return &profile, nil
}

// User fetches a profile by login. An unknown user yields (nil, nil).
func (c *Client) User(ctx context.Context, login string) (*Profile, error) {
	res, err := c.http.R().SetContext(ctx).Get("/users/" + login)
	if err != nil {
		return nil, err
	}
	r, err := classify(res.StatusCode(), res.Body(), "get user "+login)
	if err != nil {
		return nil, err
	}
	if r.notFound {
		return nil, nil
	}

	var profile Profile
	if err := json.Unmarshal(r.body, &profile); err != nil {
		return nil, fmt.Errorf("get user %s: %w", login, err)
	}
	return &profile, nil
}

type publicEvent struct {
	CreatedAt string `json:"created_at"`
}

// LastActivity returns the timestamp of the user's newest public
// event, or nil when the user has none (or it cannot be parsed).
func (c *Client) LastActivity(ctx context.Context, login string) (*time.Time, error) {
	res, err := c.http.R().SetContext(ctx).Get("/users/" + login + "/events/public")
	if err != nil {
		return nil, err
	}
	r, err := classify(res.StatusCode(), res.Body(), "get activity for "+login)
	if err != nil {
		return nil, err
	}
	if r.notFound {
		return nil, nil
	}

	var events []publicEvent
	if err := json.Unmarshal(r.body, &events); err != nil {
		return nil, fmt.Errorf("get activity for %s: %w", login, err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	latest, err := time.Parse(time.RFC3339, events[0].CreatedAt)
	if err != nil {
		slog.WarnContext(ctx, "could not parse event timestamp", "login", login, "created_at", events[0].CreatedAt)
		return nil, nil
	}
	return &latest, nil
}

// Follow issues the follow call for a login. A vanished user is
// reported as ErrNotFound so the caller can record a failed outcome.
func (c *Client) Follow(ctx context.Context, login string) error {
	res, err := c.http.R().SetContext(ctx).Put("/user/following/" + login)
	if err != nil {
		return err
	}
	r, err := classify(res.StatusCode(), res.Body(), "follow "+login)
	if err != nil {
		return err
	}
	if r.notFound {
		return fmt.Errorf("follow %s: %w", login, ErrNotFound)
	}
	return nil
}
