package lifx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
	"github.com/jake-scott/lifx-cloud/version"
)

/*
 *  Request is the immutable description of one API call, produced by the
 *  builders.  A nil body sends no body at all.
 */
type Request struct {
	client   *Client
	method   string
	path     string
	body     interface{}
	attempts uint8
}

func newRequest(c *Client, method, path string, body interface{}) *Request {
	return &Request{
		client:   c,
		method:   method,
		path:     path,
		body:     body,
		attempts: DefaultAttempts,
	}
}

func (r *Request) Method() string {
	return r.method
}

// Path is relative to the client's base URL
func (r *Request) Path() string {
	return r.path
}

func (r *Request) Body() interface{} {
	return r.body
}

func (r *Request) AttemptBudget() uint8 {
	return r.attempts
}

// Attempts returns a copy of the request with a new attempt budget.  Zero is
// treated as one.
func (r *Request) Attempts(n uint8) *Request {
	nr := *r
	nr.attempts = clampAttempts(n)
	return &nr
}

// Request makes a finished request usable wherever a builder is
func (r *Request) Request() *Request {
	return r
}

func clampAttempts(n uint8) uint8 {
	if n == 0 {
		return 1
	}
	return n
}

/*
 *  Send executes the request, retrying up to the attempt budget.
 *
 *  Client errors (see IsClientError) end the loop at once.  A rate limited
 *  response is retried once its reset time has passed, or after the client's
 *  fallback wait if the response did not say.  The last outcome is returned
 *  when the budget runs out.
 *
 *  If ctx is done while waiting the context error is returned wrapped, and it
 *  is never an *Error.
 */
func (r *Request) Send(ctx context.Context) (*Response, error) {
	log := logging.Logger(ctx).WithFields(logrus.Fields{
		"method": r.method,
		"path":   r.path,
	})

	budget := int(clampAttempts(r.attempts))

	var lastErr error
	for attempt := 1; attempt <= budget; attempt++ {
		if attempt > 1 {
			if err := r.backoff(ctx, log, lastErr); err != nil {
				return nil, err
			}
		}

		log.WithField("attempt", attempt).Debug("Sending request")

		resp, err := r.sendOnce(ctx)
		if err == nil {
			return resp, nil
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			// cancelled mid flight
			return nil, err
		}

		lastErr = err

		// rate limits are client errors but are worth waiting out
		if apiErr.IsClientError() && apiErr.Kind != KindRateLimited {
			return nil, err
		}

		if attempt < budget {
			log.WithError(err).WithField("attempt", attempt).Warn("Request failed, retrying")
		}
	}

	return nil, lastErr
}

// backoff waits out a rate limit before the next attempt
func (r *Request) backoff(ctx context.Context, log *logrus.Entry, prev error) error {
	var apiErr *Error
	if !errors.As(prev, &apiErr) || apiErr.Kind != KindRateLimited {
		return nil
	}

	deadline := apiErr.Reset
	if deadline.IsZero() {
		deadline = time.Now().Add(r.client.rateLimitFallback)
	}

	log.Infof("Rate limited, waiting %s", time.Until(deadline).Round(time.Millisecond))
	if err := sleepUntil(ctx, deadline); err != nil {
		return errors.Wrap(err, "waiting for rate limit reset")
	}

	return nil
}

func (r *Request) sendOnce(ctx context.Context) (*Response, error) {
	url := r.client.url(r.path)

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, &Error{Kind: KindSerialization, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, url, body)
	if err != nil {
		return nil, &Error{Kind: KindOther, Err: err}
	}

	tok, err := r.client.tokens.Token()
	if err != nil {
		return nil, &Error{Kind: KindOther, Err: errors.Wrap(err, "fetching access token")}
	}
	tok.SetAuthHeader(req)

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := r.client.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "sending request")
		}
		if errors.Is(err, errTooManyRedirects) {
			return nil, &Error{Kind: KindRedirect, URL: url, Err: err}
		}
		return nil, &Error{Kind: KindHTTP, Err: err}
	}
	defer res.Body.Close()

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "reading response")
		}
		return nil, &Error{Kind: KindHTTP, Status: res.StatusCode, Err: err}
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return &Response{
			StatusCode: res.StatusCode,
			Header:     res.Header,
			Body:       data,
		}, nil

	case res.StatusCode == http.StatusTooManyRequests:
		e := &Error{Kind: KindRateLimited, Status: res.StatusCode}
		if deadline, ok := rateLimitDeadline(res.Header.Get(RateLimitResetHeader), time.Now()); ok {
			e.Reset = deadline
		}
		return nil, e
	}

	return nil, classifyStatus(res.StatusCode, url, gjson.GetBytes(data, "error").String())
}
