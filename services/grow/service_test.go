package grow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ghgrow/lib/github"
	"ghgrow/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

// fakeGitHub is an in-memory stand-in for the GitHub REST API serving
// just enough of the surface the service touches.
type fakeGitHub struct {
	mu sync.Mutex

	viewer    string
	followers map[string][]string
	following map[string][]string
	profiles  map[string]github.Profile
	// logins with a public event 24h before testNow
	active map[string]bool

	followStatus func(login string) int
	followed     []string

	// zero values serve a healthy quota of 5000
	rateLimitRemaining int
	rateLimitStatus    int

	requests []string
}

func (f *fakeGitHub) handler() http.Handler {
	writeLogins := func(w http.ResponseWriter, logins []string) {
		users := make([]map[string]string, 0, len(logins))
		for _, l := range logins {
			users = append(users, map[string]string{"login": l})
		}
		json.NewEncoder(w).Encode(users)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rate_limit", func(w http.ResponseWriter, r *http.Request) {
		if f.rateLimitStatus != 0 && f.rateLimitStatus != http.StatusOK {
			w.WriteHeader(f.rateLimitStatus)
			return
		}
		remaining := f.rateLimitRemaining
		if remaining == 0 {
			remaining = 5000
		}
		fmt.Fprintf(
			w, `{"resources":{"core":{"remaining":%d,"reset":%d}}}`,
			remaining, testNow.Add(time.Hour).Unix(),
		)
	})
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.profiles[f.viewer])
	})
	mux.HandleFunc("GET /user/followers", func(w http.ResponseWriter, r *http.Request) {
		writeLogins(w, f.followers[f.viewer])
	})
	mux.HandleFunc("GET /user/following", func(w http.ResponseWriter, r *http.Request) {
		writeLogins(w, f.following[f.viewer])
	})
	mux.HandleFunc("GET /users/{login}", func(w http.ResponseWriter, r *http.Request) {
		profile, ok := f.profiles[r.PathValue("login")]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(profile)
	})
	mux.HandleFunc("GET /users/{login}/followers", func(w http.ResponseWriter, r *http.Request) {
		writeLogins(w, f.followers[r.PathValue("login")])
	})
	mux.HandleFunc("GET /users/{login}/following", func(w http.ResponseWriter, r *http.Request) {
		writeLogins(w, f.following[r.PathValue("login")])
	})
	mux.HandleFunc("GET /users/{login}/events/public", func(w http.ResponseWriter, r *http.Request) {
		if !f.active[r.PathValue("login")] {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprintf(w, `[{"created_at":%q}]`, testNow.Add(-24*time.Hour).Format(time.RFC3339))
	})
	mux.HandleFunc("PUT /user/following/{login}", func(w http.ResponseWriter, r *http.Request) {
		login := r.PathValue("login")

		f.mu.Lock()
		f.followed = append(f.followed, login)
		f.mu.Unlock()

		status := http.StatusNoContent
		if f.followStatus != nil {
			status = f.followStatus(login)
		}
		if status == http.StatusForbidden {
			http.Error(w, `{"message":"API rate limit exceeded"}`, status)
			return
		}
		w.WriteHeader(status)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func setupService(t testing.TB, fake *fakeGitHub, config Config) Service {
	cleanup := telemetry.SetupForTesting(t, "services/grow")
	t.Cleanup(cleanup)

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := github.NewClient(github.ClientOptions{
		BaseURL: srv.URL,
		Token:   "testtoken",
	})
	return NewService(
		client, config,
		WithClock(func() time.Time { return testNow }),
		WithSleep(func(ctx context.Context, d time.Duration) {}),
		WithIntn(func(n int) int { return 0 }),
	)
}

func goodProfile(login string) github.Profile {
	return github.Profile{Login: login, Followers: 100, Following: 200}
}

func TestDiscoverDeduplicatesAndExcludes(t *testing.T) {
	fake := &fakeGitHub{
		viewer: "alice",
		followers: map[string][]string{
			"alice": {"bob", "carol"},
			// secondary network: both followers are followed by eve
			"bob":   {"eve"},
			"carol": {"eve", "frank"},
		},
		following: map[string][]string{
			"alice": {"dave"},
			// shared connections, both lists surface eve again plus
			// excluded names
			"bob":   {"eve", "dave", "alice"},
			"carol": {"grace", "bob"},
		},
		profiles: map[string]github.Profile{
			"alice": goodProfile("alice"),
			"eve":   goodProfile("eve"),
			"frank": goodProfile("frank"),
			"grace": goodProfile("grace"),
		},
		active: map[string]bool{"eve": true, "frank": true, "grace": true},
	}

	service := setupService(t, fake, DefaultConfig())
	candidates := service.Discover(context.Background(), "alice", fake.followers["alice"], fake.following["alice"])

	diff := cmp.Diff(
		[]string{"eve", "frank", "grace"},
		candidates,
		cmpopts.SortSlices(func(a, b string) bool { return a < b }),
	)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestDiscoverStopsAtMaxCandidates(t *testing.T) {
	fake := &fakeGitHub{
		viewer: "alice",
		followers: map[string][]string{
			"alice": {"bob"},
			"bob":   {"u1", "u2", "u3", "u4"},
		},
		following: map[string][]string{
			"alice": {},
			"bob":   {},
		},
		profiles: map[string]github.Profile{},
		active:   map[string]bool{},
	}
	for _, login := range []string{"u1", "u2", "u3", "u4"} {
		fake.profiles[login] = goodProfile(login)
		fake.active[login] = true
	}

	config := DefaultConfig()
	config.MaxCandidates = 2

	service := setupService(t, fake, config)
	candidates := service.Discover(context.Background(), "alice", fake.followers["alice"], fake.following["alice"])
	require.Len(t, candidates, 2)
}

func TestDiscoverSkipsUnfetchableCandidates(t *testing.T) {
	fake := &fakeGitHub{
		viewer: "alice",
		followers: map[string][]string{
			"alice": {"bob"},
			"bob":   {},
		},
		following: map[string][]string{
			"alice": {},
			// deleted has no profile, inactive has no public events
			"bob": {"eve", "deleted", "inactive"},
		},
		profiles: map[string]github.Profile{
			"eve":      goodProfile("eve"),
			"inactive": goodProfile("inactive"),
		},
		active: map[string]bool{"eve": true},
	}

	service := setupService(t, fake, DefaultConfig())
	candidates := service.Discover(context.Background(), "alice", fake.followers["alice"], fake.following["alice"])
	require.Equal(t, []string{"eve"}, candidates)
}

func TestFollowAllHonorsDailyCap(t *testing.T) {
	fake := &fakeGitHub{}
	sleeps := 0

	config := DefaultConfig()
	config.MaxFollowsPerDay = 3

	service := setupService(t, fake, config)
	service.sleep = func(ctx context.Context, d time.Duration) { sleeps++ }

	outcomes, err := service.FollowAll(
		context.Background(),
		[]string{"u1", "u2", "u3", "u4", "u5"},
	)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	require.Equal(t, []string{"u1", "u2", "u3"}, fake.followed)
	for _, o := range outcomes {
		require.True(t, o.Followed)
		require.NoError(t, o.Err)
	}
	// no pause after the final attempt
	require.Equal(t, 2, sleeps)
}

func TestFollowAllAbortsOnAuthenticationError(t *testing.T) {
	fake := &fakeGitHub{
		followStatus: func(login string) int {
			if login == "u2" {
				return http.StatusUnauthorized
			}
			return http.StatusNoContent
		},
	}

	service := setupService(t, fake, DefaultConfig())
	outcomes, err := service.FollowAll(
		context.Background(),
		[]string{"u1", "u2", "u3"},
	)
	require.ErrorIs(t, err, github.ErrAuthentication)

	// outcomes recorded before the abort are preserved, u3 is untouched
	require.Len(t, outcomes, 2)
	require.True(t, outcomes[0].Followed)
	require.False(t, outcomes[1].Followed)
	require.Equal(t, []string{"u1", "u2"}, fake.followed)
}

func TestFollowAllAbortsOnRateLimit(t *testing.T) {
	fake := &fakeGitHub{
		followStatus: func(login string) int { return http.StatusForbidden },
	}

	service := setupService(t, fake, DefaultConfig())
	outcomes, err := service.FollowAll(context.Background(), []string{"u1", "u2"})

	var rateErr *github.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	require.Len(t, outcomes, 1)
	require.Equal(t, []string{"u1"}, fake.followed)
}

func TestFollowAllContinuesPastGenericFailure(t *testing.T) {
	fake := &fakeGitHub{
		followStatus: func(login string) int {
			if login == "u2" {
				return http.StatusInternalServerError
			}
			return http.StatusNoContent
		},
	}

	service := setupService(t, fake, DefaultConfig())
	outcomes, err := service.FollowAll(context.Background(), []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	require.True(t, outcomes[0].Followed)
	require.False(t, outcomes[1].Followed)
	require.True(t, outcomes[2].Followed)
}

func TestRun(t *testing.T) {
	fake := &fakeGitHub{
		viewer: "alice",
		followers: map[string][]string{
			"alice": {"bob"},
			"bob":   {},
		},
		following: map[string][]string{
			"alice": {"dave"},
			"bob":   {"eve"},
		},
		profiles: map[string]github.Profile{
			"alice": goodProfile("alice"),
			"eve":   goodProfile("eve"),
		},
		active: map[string]bool{"eve": true},
	}

	service := setupService(t, fake, DefaultConfig())
	summary, err := service.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "alice", summary.Viewer)
	require.Equal(t, 1, summary.Followers)
	require.Equal(t, 1, summary.Following)
	require.Equal(t, 1, summary.Candidates)
	require.Equal(t, 1, summary.Attempted)
	require.Equal(t, 1, summary.Followed)
	require.Equal(t, 0, summary.Failed)
	require.NoError(t, summary.Aborted)
	require.Equal(t, []string{"eve"}, fake.followed)
}

func TestRunAbortsOnLowRateLimit(t *testing.T) {
	fake := &fakeGitHub{rateLimitRemaining: 42}

	service := setupService(t, fake, DefaultConfig())
	summary, err := service.Run(context.Background())
	require.NoError(t, err)
	require.Error(t, summary.Aborted)
	require.Zero(t, summary.Candidates)
	require.Zero(t, summary.Attempted)
	require.Empty(t, fake.followed)

	// nothing beyond the preflight touches the API
	require.Equal(t, []string{"GET /rate_limit"}, fake.requests)
}

func TestRunToleratesPreflightFailure(t *testing.T) {
	fake := &fakeGitHub{
		rateLimitStatus: http.StatusInternalServerError,
		viewer:          "alice",
		followers: map[string][]string{
			"alice": {"bob"},
			"bob":   {},
		},
		following: map[string][]string{
			"alice": {},
			"bob":   {"eve"},
		},
		profiles: map[string]github.Profile{
			"alice": goodProfile("alice"),
			"eve":   goodProfile("eve"),
		},
		active: map[string]bool{"eve": true},
	}

	service := setupService(t, fake, DefaultConfig())
	summary, err := service.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, summary.Aborted)
	require.Equal(t, 1, summary.Followed)
	require.Equal(t, []string{"eve"}, fake.followed)
}

func TestFollowAllStopsOnInterrupt(t *testing.T) {
	fake := &fakeGitHub{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := setupService(t, fake, DefaultConfig())
	// the interrupt arrives while the throttle pause is in progress
	service.sleep = func(ctx context.Context, d time.Duration) { cancel() }

	outcomes, err := service.FollowAll(ctx, []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Followed)
	require.Equal(t, []string{"u1"}, fake.followed)
}

func TestSampleFollowersIsBounded(t *testing.T) {
	config := DefaultConfig()
	config.SampleSize = 3

	service := NewService(nil, config, WithIntn(func(n int) int { return 0 }))

	followers := []string{"a", "b", "c", "d", "e", "f"}
	sample := service.sampleFollowers(followers)
	require.Len(t, sample, 3)

	seen := map[string]bool{}
	for _, login := range sample {
		require.Contains(t, followers, login)
		require.False(t, seen[login], "sample contains a duplicate")
		seen[login] = true
	}

	// small lists are returned whole
	short := []string{"a", "b"}
	require.ElementsMatch(t, short, service.sampleFollowers(short))
}
