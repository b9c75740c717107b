package lifx

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jake-scott/lifx-cloud/pkg/middlewares"
)

const (
	// DefaultBaseURL is the LIFX HTTP API origin
	DefaultBaseURL = "https://api.lifx.com/v1"

	// DefaultTimeout bounds each HTTP round trip of the default HTTP client
	DefaultTimeout = 30 * time.Second

	// DefaultAttempts is the attempt budget of a request unless told otherwise
	DefaultAttempts uint8 = 1

	maxRedirects = 10
)

var errTooManyRedirects = errors.New("stopped after too many redirects")

/*
 *  Client holds the read-only configuration shared by every request: the
 *  bearer token, API origin and the HTTP collaborator.  It is never mutated
 *  after construction, the With* methods return modified copies, so it is
 *  safe to use from multiple goroutines.
 */
type Client struct {
	baseURL           string
	tokens            oauth2.TokenSource
	httpClient        Doer
	rateLimitFallback time.Duration
}

// NewClient returns a client for the given access token
func NewClient(token string) *Client {
	return &Client{
		baseURL:           DefaultBaseURL,
		tokens:            oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		httpClient:        newHTTPClient(middlewares.NewLoggingTransport(http.DefaultTransport, false)),
		rateLimitFallback: DefaultRateLimitFallback,
	}
}

func newHTTPClient(transport http.RoundTripper) *http.Client {
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
}

func (c *Client) WithBaseURL(url string) *Client {
	nc := *c
	nc.baseURL = url
	return &nc
}

// WithTokenSource replaces the static access token.  Tokens are only ever
// used, never acquired or refreshed by this package.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	nc := *c
	nc.tokens = ts
	return &nc
}

// WithHTTPClient replaces the HTTP collaborator
func (c *Client) WithHTTPClient(d Doer) *Client {
	nc := *c
	nc.httpClient = d
	return &nc
}

// WithTimeout sets the round trip timeout.  It only applies when the HTTP
// collaborator is an *http.Client.
func (c *Client) WithTimeout(d time.Duration) *Client {
	nc := *c
	if hc, ok := c.httpClient.(*http.Client); ok {
		nhc := *hc
		nhc.Timeout = d
		nc.httpClient = &nhc
	}
	return &nc
}

// WithRequestLogging turns on debug logging of request and response bodies
func (c *Client) WithRequestLogging() *Client {
	nc := *c
	if hc, ok := c.httpClient.(*http.Client); ok {
		nhc := *hc
		nhc.Transport = middlewares.NewLoggingTransport(http.DefaultTransport, true)
		nc.httpClient = &nhc
	}
	return &nc
}

// WithRateLimitFallback sets the wait used when a 429 response carries no
// usable reset time
func (c *Client) WithRateLimitFallback(d time.Duration) *Client {
	nc := *c
	nc.rateLimitFallback = d
	return &nc
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}
