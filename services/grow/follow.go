package grow

import (
	"context"
	"log/slog"
	"time"

	"ghgrow/lib/github"

	"go.opentelemetry.io/otel/codes"
)

// Outcome records one attempted follow.
type Outcome struct {
	Login    string
	Followed bool
	Err      error
}

// FollowAll attempts the candidates in order, stopping at the daily
// cap. A terminal API failure (bad credentials, exhausted quota) is
// returned and aborts the remaining candidates, any other failure is
// recorded on its outcome and the loop continues. Outcomes gathered
// before an abort are always preserved.
func (s Service) FollowAll(ctx context.Context, candidates []string) ([]Outcome, error) {
	ctx, span := tracer.Start(ctx, "FollowAll")
	defer span.End()

	var outcomes []Outcome
	attempted := 0

	for i, login := range candidates {
		if attempted >= s.config.MaxFollowsPerDay {
			slog.InfoContext(
				ctx, "daily follow cap reached",
				"cap", s.config.MaxFollowsPerDay,
				"skipped", len(candidates)-i,
			)
			break
		}
		if err := ctx.Err(); err != nil {
			slog.InfoContext(ctx, "follow loop interrupted", "attempted", attempted)
			break
		}

		slog.InfoContext(
			ctx, "processing candidate",
			"login", login,
			"position", i+1,
			"total", len(candidates),
		)

		err := s.client.Follow(ctx, login)
		attempted++

		if err == nil {
			slog.InfoContext(ctx, "followed user", "login", login)
			outcomes = append(outcomes, Outcome{Login: login, Followed: true})
		} else {
			outcomes = append(outcomes, Outcome{Login: login, Err: err})
			if github.IsTerminal(err) {
				span.RecordError(err)
				span.SetStatus(codes.Error, "terminal api failure during follow loop")
				return outcomes, err
			}
			slog.ErrorContext(ctx, "failed to follow user", "login", login, "err", err)
		}

		// the pause is a throttle, pointless after the final attempt
		if i < len(candidates)-1 && attempted < s.config.MaxFollowsPerDay {
			s.sleep(ctx, s.followDelay())
		}
	}

	return outcomes, nil
}

// followDelay picks a random pause within the configured bounds.
func (s Service) followDelay() time.Duration {
	window := s.config.MaxDelay - s.config.MinDelay
	if window <= 0 {
		return s.config.MinDelay
	}
	return s.config.MinDelay + time.Duration(s.intn(int(window)))
}
