package lifx

import "net/http"

// Doer is the HTTP collaborator used to execute requests.  *http.Client
// satisfies it; timeouts, TLS and connection pooling are its concern.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sender is anything that can be finalized into a Request: every request
// builder and Request itself
type Sender interface {
	Request() *Request
}
