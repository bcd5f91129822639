package cmd

import (
	"errors"

	"ghgrow/lib/envutil"
	"ghgrow/services/grow"
)

type appConfig struct {
	Token string
	Grow  grow.Config
}

// loadConfig reads the token and threshold overrides from the
// environment (an optional .env file is merged in first). A missing
// token is fatal before any network call is made.
func loadConfig() (appConfig, error) {
	envutil.Load()

	token := envutil.String("GITHUB_TOKEN", "")
	if token == "" {
		return appConfig{}, errors.New("GITHUB_TOKEN environment variable is required")
	}

	cfg := grow.DefaultConfig()
	cfg.MaxFollowing = envutil.Int("MAX_FOLLOWING", cfg.MaxFollowing)
	cfg.MinFollowers = envutil.Int("MIN_FOLLOWERS", cfg.MinFollowers)
	cfg.MaxFollowers = envutil.Int("MAX_FOLLOWERS", cfg.MaxFollowers)
	cfg.InactivityDays = envutil.Int("INACTIVITY_DAYS", cfg.InactivityDays)
	cfg.FollowRatioThreshold = envutil.Float("FOLLOW_RATIO_THRESHOLD", cfg.FollowRatioThreshold)
	cfg.MaxFollowsPerDay = envutil.Int("MAX_FOLLOWS_PER_DAY", cfg.MaxFollowsPerDay)
	cfg.SampleSize = envutil.Int("SAMPLE_SIZE", cfg.SampleSize)
	cfg.MinRateLimitRemaining = envutil.Int("MIN_RATE_LIMIT_REMAINING", cfg.MinRateLimitRemaining)
	cfg.MinDelay = envutil.Duration("MIN_DELAY", cfg.MinDelay)
	cfg.MaxDelay = envutil.Duration("MAX_DELAY", cfg.MaxDelay)
	cfg.PageSize = envutil.Int("PAGE_SIZE", cfg.PageSize)
	cfg.MaxCandidates = envutil.Int("MAX_CANDIDATES", cfg.MaxCandidates)

	return appConfig{Token: token, Grow: cfg}, nil
}
