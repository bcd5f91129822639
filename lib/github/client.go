package github

import (
	"time"

	"ghgrow/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://api.github.com"

const (
	DefaultPageSize = 100
	// hard cutoff against endpoints that never return a short page
	DefaultMaxPages = 100
)

type Client struct {
	http     *resty.Client
	maxPages int
}

type ClientOptions struct {
	// defaults to DefaultBaseURL
	BaseURL string
	Token   string
	// defaults to 10s
	Timeout time.Duration
	// defaults to DefaultMaxPages
	MaxPages int
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 10
	}
	if opts.MaxPages == 0 {
		opts.MaxPages = DefaultMaxPages
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetHeader("Authorization", "token "+opts.Token)
	client.SetHeader("Accept", "application/vnd.github.v3+json")
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "github/http")

	return &Client{http: client, maxPages: opts.MaxPages}
}
