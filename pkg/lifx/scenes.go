package lifx

import (
	"context"
	"net/http"
	"net/url"
	"time"

	oaerrors "github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

type Scenes struct {
	client *Client
}

func (c *Client) Scenes() Scenes {
	return Scenes{client: c}
}

// List returns the account's scenes.  Decode the response with
// Response.Scenes.
func (s Scenes) List() *Request {
	return newRequest(s.client, http.MethodGet, "/scenes", nil)
}

// Activate applies the stored states of a scene
func (s Scenes) Activate(uuid string) Activate {
	return Activate{client: s.client, uuid: uuid, attempts: DefaultAttempts}
}

type activateBody struct {
	Duration  *Duration `json:"duration,omitempty"`
	Ignore    []string  `json:"ignore,omitempty"`
	Overrides *State    `json:"overrides,omitempty"`
}

type Activate struct {
	client   *Client
	uuid     string
	body     activateBody
	attempts uint8
}

func (b Activate) Transition(d time.Duration) Activate {
	dur := Duration(d)
	b.body.Duration = &dur
	return b
}

// Ignore leaves the given state properties (eg. "power", "brightness")
// untouched by the scene
func (b Activate) Ignore(props ...string) Activate {
	ig := b.body.Ignore
	b.body.Ignore = append(ig[:len(ig):len(ig)], props...)
	return b
}

// Overrides replaces the given properties in every state of the scene
func (b Activate) Overrides(s State) Activate {
	b.body.Overrides = &s
	return b
}

func (b Activate) Attempts(n uint8) Activate {
	b.attempts = clampAttempts(n)
	return b
}

// Validate checks the scene ID is a UUID and the overrides are in range
func (b Activate) Validate() error {
	var errs []error

	if verr := validate.FormatOf("scene_id", "path", "uuid", b.uuid, strfmt.Default); verr != nil {
		errs = append(errs, verr)
	}

	if b.body.Overrides != nil {
		if err := b.body.Overrides.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}

	return activateError{oaerrors.CompositeValidationError(errs...)}
}

// activateError reports every failed check while keeping each one reachable
// through errors.As
type activateError struct {
	*oaerrors.CompositeError
}

func (e activateError) Unwrap() []error {
	return e.Errors
}

func (b Activate) Request() *Request {
	path := "/scenes/scene_id:" + url.PathEscape(b.uuid) + "/activate"
	return newRequest(b.client, http.MethodPut, path, b.body).Attempts(b.attempts)
}

func (b Activate) Send(ctx context.Context) (*Response, error) {
	return b.Request().Send(ctx)
}
