package grow

import (
	"context"
	"time"

	"ghgrow/lib/github"
	"ghgrow/lib/telemetry"

	"github.com/mazen160/go-random"
)

var tracer = telemetry.Tracer("ghgrow.services.grow")

// Config is built once at startup and never mutated afterwards.
type Config struct {
	// accounts following more than this are unlikely to notice one more follower
	MaxFollowing int
	// too few followers may indicate an inactive account
	MinFollowers int
	// too many followers may indicate an account that doesn't follow back
	MaxFollowers int
	// days without a public event before an account counts as inactive
	InactivityDays int
	// minimum following/followers ratio of an account that tends to follow back
	FollowRatioThreshold float64
	// maximum follow actions within a single run
	MaxFollowsPerDay int
	// how many of the viewer's followers to sample for the 2-hop scans
	SampleSize int
	// abort the run before doing anything expensive under this quota
	MinRateLimitRemaining int
	// bounds of the randomized pause between follow calls
	MinDelay time.Duration
	MaxDelay time.Duration
	// page size for follower/following requests
	PageSize int
	// stop discovery once this many candidates have been accepted,
	// zero means the daily cap
	MaxCandidates int
}

func DefaultConfig() Config {
	return Config{
		MaxFollowing:          1000,
		MinFollowers:          5,
		MaxFollowers:          1000,
		InactivityDays:        60,
		FollowRatioThreshold:  1.2,
		MaxFollowsPerDay:      200,
		SampleSize:            10,
		MinRateLimitRemaining: 100,
		MinDelay:              time.Second * 2,
		MaxDelay:              time.Second * 5,
		PageSize:              github.DefaultPageSize,
	}
}

func (c Config) maxCandidates() int {
	if c.MaxCandidates > 0 {
		return c.MaxCandidates
	}
	return c.MaxFollowsPerDay
}

type Service struct {
	client *github.Client
	config Config

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
	intn  func(n int) int
}

func NewService(client *github.Client, config Config, opts ...Option) Service {
	s := Service{
		client: client,
		config: config,
		now:    time.Now,
		sleep:  defaultSleep,
		intn:   defaultIntn,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

type Option func(s *Service)

// WithClock overrides the time source used by the evaluator.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithSleep overrides the pause between follow calls.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(s *Service) {
		s.sleep = sleep
	}
}

// WithIntn overrides the randomness used for sampling and delay jitter.
func WithIntn(intn func(n int) int) Option {
	return func(s *Service) {
		s.intn = intn
	}
}

func defaultSleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func defaultIntn(n int) int {
	if n <= 0 {
		return 0
	}
	value, err := random.IntRange(0, n)
	if err != nil {
		return 0
	}
	return value
}
