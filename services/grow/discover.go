package grow

import (
	"context"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"
)

// Discover builds the candidate pool from two overlapping scans over a
// random sample of the viewer's followers:
//
//   - shared connections: who each sampled follower is following
//   - secondary network: who follows each sampled follower
//
// The union is deduplicated and stripped of the viewer, existing
// followees and existing followers before each survivor is run through
// the candidate heuristics. The order of the returned slice is not
// significant.
func (s Service) Discover(ctx context.Context, viewer string, followers, following []string) []string {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()

	sample := s.sampleFollowers(followers)
	slog.InfoContext(ctx, "analyzing sample followers", "sample_size", len(sample))

	excluded := make(map[string]struct{}, len(followers)+len(following)+1)
	excluded[viewer] = struct{}{}
	for _, login := range following {
		excluded[login] = struct{}{}
	}
	for _, login := range followers {
		excluded[login] = struct{}{}
	}

	pool := map[string]struct{}{}
	gather := func(logins []string) {
		for _, login := range logins {
			if _, skip := excluded[login]; skip {
				continue
			}
			pool[login] = struct{}{}
		}
	}

	for _, follower := range sample {
		peers, err := s.client.UserFollowing(ctx, follower, s.config.PageSize)
		if err != nil {
			slog.WarnContext(ctx, "skipping follower's following list", "login", follower, "err", err)
		} else {
			gather(peers)
		}

		peers, err = s.client.UserFollowers(ctx, follower, s.config.PageSize)
		if err != nil {
			slog.WarnContext(ctx, "skipping follower's followers list", "login", follower, "err", err)
		} else {
			gather(peers)
		}
	}

	slog.InfoContext(ctx, "evaluating potential candidates", "pool_size", len(pool))
	span.SetAttributes(attribute.Int("pool_size", len(pool)))

	var candidates []string
	evaluated := 0
	for login := range pool {
		if err := ctx.Err(); err != nil {
			slog.InfoContext(ctx, "discovery interrupted", "evaluated", evaluated)
			break
		}

		evaluated++
		if evaluated%10 == 0 {
			slog.InfoContext(ctx, "evaluation progress", "evaluated", evaluated, "pool_size", len(pool))
		}

		if !s.isGoodCandidate(ctx, login) {
			continue
		}
		candidates = append(candidates, login)
		if len(candidates) >= s.config.maxCandidates() {
			slog.InfoContext(ctx, "reached maximum candidate pool size", "max", s.config.maxCandidates())
			break
		}
	}

	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	return candidates
}

// sampleFollowers picks a bounded random subset so the 2-hop scans
// don't explode the request count on accounts with many followers.
func (s Service) sampleFollowers(followers []string) []string {
	if len(followers) <= s.config.SampleSize {
		return slices.Clone(followers)
	}

	shuffled := slices.Clone(followers)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:s.config.SampleSize]
}
