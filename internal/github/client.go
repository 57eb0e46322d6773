package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"
)

type Client struct {
	Client *github.Client
	HTTP   *http.Client
}

type options struct {
	verbose bool
	baseURL string
}

type Option func(*options)

// WithVerbose logs one debug line per API request and response.
func WithVerbose(enabled bool) Option {
	return func(o *options) {
		o.verbose = enabled
	}
}

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(raw string) Option {
	return func(o *options) {
		o.baseURL = raw
	}
}

// loggingRoundTripper emits one debug record per request and response,
// including latency.
type loggingRoundTripper struct {
	base http.RoundTripper
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	slog.Debug("github api request", "method", req.Method, "url", req.URL.String())
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		slog.Debug("github api error", "err", err, "after", dur)
	} else {
		slog.Debug("github api response", "status", resp.StatusCode, "after", dur)
	}
	return resp, err
}

func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}

	transport := http.DefaultTransport
	if o.verbose {
		transport = &loggingRoundTripper{base: transport}
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	tc := &http.Client{Transport: transport}

	gc := github.NewClient(tc)
	if o.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github client: invalid base url %q: %w", o.baseURL, err)
		}
		gc.BaseURL = base
		gc.UploadURL = base
	}

	return &Client{
		Client: gc,
		HTTP:   tc,
	}, nil
}
