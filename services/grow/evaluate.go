package grow

import (
	"context"
	"log/slog"
	"time"

	"ghgrow/lib/github"
)

// acceptCounts applies the follower/following thresholds. Anything
// missing or malformed fails closed.
func acceptCounts(profile *github.Profile, cfg Config) bool {
	if profile == nil {
		return false
	}
	if profile.Followers < 0 || profile.Following < 0 {
		return false
	}

	if profile.Following >= cfg.MaxFollowing {
		return false
	}
	if profile.Followers < cfg.MinFollowers || profile.Followers > cfg.MaxFollowers {
		return false
	}
	return true
}

// acceptProfile is the full candidate decision over a fetched profile
// and its latest public activity timestamp.
func acceptProfile(profile *github.Profile, lastActivity *time.Time, now time.Time, cfg Config) bool {
	if !acceptCounts(profile, cfg) {
		return false
	}

	// no public activity means the account can't be confirmed active
	if lastActivity == nil {
		return false
	}
	inactiveCutoff := time.Duration(cfg.InactivityDays) * 24 * time.Hour
	if now.Sub(*lastActivity) > inactiveCutoff {
		return false
	}

	followers := profile.Followers
	if followers < 1 {
		followers = 1
	}
	ratio := float64(profile.Following) / float64(followers)
	return ratio >= cfg.FollowRatioThreshold
}

// isGoodCandidate fetches a candidate's profile and activity and runs
// the heuristics. Fetch failures resolve to "not a candidate" so one
// broken account never aborts discovery.
func (s Service) isGoodCandidate(ctx context.Context, login string) bool {
	profile, err := s.client.User(ctx, login)
	if err != nil {
		slog.DebugContext(ctx, "could not fetch candidate profile", "login", login, "err", err)
		return false
	}
	if profile == nil {
		return false
	}

	// the count checks are free once the profile is fetched, run them
	// before spending another request on the activity feed
	if !acceptCounts(profile, s.config) {
		return false
	}

	lastActivity, err := s.client.LastActivity(ctx, login)
	if err != nil {
		slog.DebugContext(ctx, "could not fetch candidate activity", "login", login, "err", err)
		return false
	}

	return acceptProfile(profile, lastActivity, s.now(), s.config)
}
