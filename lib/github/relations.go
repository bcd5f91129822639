package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

type Relation string

const (
	RelationFollowers Relation = "followers"
	RelationFollowing Relation = "following"
)

type relationUser struct {
	Login string `json:"login"`
}

// ViewerFollowers pages through everyone following the authenticated
// user. On a page failure the logins gathered so far are returned
// alongside the error, the caller decides whether partial data is
// usable.
func (c *Client) ViewerFollowers(ctx context.Context, pageSize int) ([]string, error) {
	return c.viewerRelation(ctx, RelationFollowers, pageSize)
}

// ViewerFollowing pages through everyone the authenticated user follows.
func (c *Client) ViewerFollowing(ctx context.Context, pageSize int) ([]string, error) {
	return c.viewerRelation(ctx, RelationFollowing, pageSize)
}

func (c *Client) viewerRelation(ctx context.Context, rel Relation, pageSize int) ([]string, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	operation := fmt.Sprintf("get viewer %s", rel)

	var logins []string
	for page := 1; ; page++ {
		if page > c.maxPages {
			slog.WarnContext(
				ctx, "reached maximum page limit",
				"relation", rel,
				"max_pages", c.maxPages,
			)
			return logins, nil
		}

		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("page", strconv.Itoa(page)).
			SetQueryParam("per_page", strconv.Itoa(pageSize)).
			Get("/user/" + string(rel))
		if err != nil {
			return logins, err
		}
		r, err := classify(res.StatusCode(), res.Body(), fmt.Sprintf("%s page %d", operation, page))
		if err != nil {
			return logins, err
		}
		if r.notFound {
			return logins, nil
		}

		var users []relationUser
		if err := json.Unmarshal(r.body, &users); err != nil {
			return logins, fmt.Errorf("%s page %d: %w", operation, page, err)
		}
		for _, u := range users {
			logins = append(logins, u.Login)
		}

		// a short page means there is no more data
		if len(users) < pageSize {
			return logins, nil
		}
	}
}

// UserFollowers fetches a single page of a user's followers. The
// discovery scans only need a bounded slice of the 2-hop network.
func (c *Client) UserFollowers(ctx context.Context, login string, pageSize int) ([]string, error) {
	return c.userRelation(ctx, login, RelationFollowers, pageSize)
}

// UserFollowing fetches a single page of who a user follows.
func (c *Client) UserFollowing(ctx context.Context, login string, pageSize int) ([]string, error) {
	return c.userRelation(ctx, login, RelationFollowing, pageSize)
}

func (c *Client) userRelation(ctx context.Context, login string, rel Relation, pageSize int) ([]string, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	operation := fmt.Sprintf("get %s for %s", rel, login)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("per_page", strconv.Itoa(pageSize)).
		Get(fmt.Sprintf("/users/%s/%s", login, rel))
	if err != nil {
		return nil, err
	}
	r, err := classify(res.StatusCode(), res.Body(), operation)
	if err != nil {
		return nil, err
	}
	if r.notFound {
		return nil, nil
	}

	var users []relationUser
	if err := json.Unmarshal(r.body, &users); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.Login)
	}
	return logins, nil
}
