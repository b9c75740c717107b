package lifx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	// HTTP 429, Reset holds the time the limit lifts if the API said
	KindRateLimited ErrorKind = iota
	// HTTP 400 or 422
	KindBadRequest
	// HTTP 401
	KindBadAccessToken
	// HTTP 403
	KindBadOAuthScope
	// HTTP 404, URL holds the request URL when known
	KindNotFound
	// HTTP 5xx
	KindServer
	// transport failures: DNS, TLS, connection
	KindHTTP
	// request or response body encoding failures
	KindSerialization
	// redirect loops
	KindRedirect
	// any other HTTP 4xx
	KindClient
	KindOther
)

var errorKindNames = []string{
	"rate limited",
	"bad request",
	"bad access token",
	"bad oauth scope",
	"not found",
	"server error",
	"http error",
	"serialization error",
	"redirect error",
	"client error",
	"other error",
}

func (k ErrorKind) String() string {
	if int(k) < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("unknown (kind: %d)", k)
	}

	return errorKindNames[k]
}

// Error is returned for every failure during or after a call to the API.
// Local validation failures never produce one.
type Error struct {
	Kind ErrorKind
	// HTTP status, 0 if there was no response
	Status int
	// request URL, for KindNotFound
	URL string
	// when a rate limit is expected to clear, zero if unknown
	Reset time.Time
	// the underlying failure, if any
	Err error
}

func (e *Error) Error() string {
	msg := "lifx: " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.URL != "" {
		msg += ": " + e.URL
	}
	if !e.Reset.IsZero() {
		msg += fmt.Sprintf(" (reset in %s)", time.Until(e.Reset).Round(time.Second))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsClientError reports whether the request should not be retried without
// modification
func (e *Error) IsClientError() bool {
	switch e.Kind {
	case KindRateLimited, KindBadRequest, KindBadAccessToken, KindBadOAuthScope, KindNotFound, KindClient:
		return true
	}

	return false
}

// KindOf returns the kind of a (possibly wrapped) *Error
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return 0, false
}

// IsClientError reports whether err is an *Error that should not be retried
func IsClientError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.IsClientError()
}

// classifyStatus maps a non-2xx status to the error taxonomy.  429 is handled
// by the caller since it needs the response headers.  msg is the error
// message from the response body, if there was one.
func classifyStatus(status int, url string, msg string) *Error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	cause := errors.New(msg)

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &Error{Kind: KindBadRequest, Status: status, Err: cause}
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindBadAccessToken, Status: status}
	case status == http.StatusForbidden:
		return &Error{Kind: KindBadOAuthScope, Status: status}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: status, URL: url}
	case status >= 400 && status < 500:
		return &Error{Kind: KindClient, Status: status, Err: cause}
	case status >= 500 && status < 600:
		return &Error{Kind: KindServer, Status: status, Err: cause}
	}

	return &Error{Kind: KindOther, Status: status, Err: errors.Errorf("unexpected HTTP status %d", status)}
}
