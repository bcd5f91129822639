package grow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ghgrow/lib/github"

	"go.opentelemetry.io/otel/codes"
)

// Summary is what a single run reports back to the operator.
type Summary struct {
	Viewer     string
	Followers  int
	Following  int
	Candidates int
	Attempted  int
	Followed   int
	Failed     int
	Outcomes   []Outcome
	// the terminal reason when the follow loop was cut short, nil on a
	// clean run
	Aborted error
}

// Run executes one full discovery-and-follow pass: rate limit
// preflight, viewer context, candidate discovery, follow loop. The
// returned error is non-nil only when nothing meaningful could be done
// (no viewer context); a follow loop cut short still yields a summary
// with its terminal reason in Aborted.
func (s Service) Run(ctx context.Context) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	status, err := s.client.RateLimit(ctx)
	if err != nil {
		slog.WarnContext(ctx, "could not check rate limit, proceeding with caution", "err", err)
	} else {
		slog.InfoContext(
			ctx, "rate limit status",
			"remaining", status.Remaining,
			"resets", status.Reset,
		)
		if status.Remaining < s.config.MinRateLimitRemaining {
			return Summary{
				Aborted: fmt.Errorf(
					"only %d api requests remaining, rate limit resets at %s",
					status.Remaining, status.Reset,
				),
			}, nil
		}
	}

	viewer, err := s.client.Viewer(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not fetch authenticated user")
		return Summary{}, fmt.Errorf("fetch authenticated user: %w", err)
	}
	if viewer.Login == "" {
		return Summary{}, errors.New("authenticated user profile has no login")
	}
	slog.InfoContext(ctx, "authenticated", "login", viewer.Login)

	followers, err := s.relationOrPartial(ctx, "followers", func() ([]string, error) {
		return s.client.ViewerFollowers(ctx, s.config.PageSize)
	})
	if err != nil {
		return Summary{Viewer: viewer.Login}, err
	}
	following, err := s.relationOrPartial(ctx, "following", func() ([]string, error) {
		return s.client.ViewerFollowing(ctx, s.config.PageSize)
	})
	if err != nil {
		return Summary{Viewer: viewer.Login}, err
	}

	slog.InfoContext(
		ctx, "viewer relationships",
		"followers", len(followers),
		"following", len(following),
	)

	summary := Summary{
		Viewer:    viewer.Login,
		Followers: len(followers),
		Following: len(following),
	}

	candidates := s.Discover(ctx, viewer.Login, followers, following)
	summary.Candidates = len(candidates)
	if len(candidates) == 0 {
		slog.InfoContext(ctx, "no suitable candidates found")
		return summary, nil
	}
	slog.InfoContext(ctx, "found candidates to follow", "count", len(candidates))

	outcomes, abortErr := s.FollowAll(ctx, candidates)
	summary.Outcomes = outcomes
	summary.Attempted = len(outcomes)
	summary.Aborted = abortErr
	for _, o := range outcomes {
		if o.Followed {
			summary.Followed++
		} else {
			summary.Failed++
		}
	}

	slog.InfoContext(
		ctx, "run completed",
		"followed", summary.Followed,
		"failed", summary.Failed,
	)
	return summary, nil
}

// relationOrPartial tolerates a partial follower/following list, only
// a terminal API failure aborts the run at this stage.
func (s Service) relationOrPartial(ctx context.Context, name string, fetch func() ([]string, error)) ([]string, error) {
	logins, err := fetch()
	if err == nil {
		return logins, nil
	}
	if github.IsTerminal(err) {
		return nil, fmt.Errorf("fetch viewer %s: %w", name, err)
	}
	slog.WarnContext(
		ctx, "continuing with partial relationship list",
		"relation", name,
		"fetched", len(logins),
		"err", err,
	)
	return logins, nil
}
