package lifx

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

/*
 *  Request builders.  Every builder is a value: setters return an updated
 *  copy and never touch the receiver, so a partly built request can be
 *  shared and specialised.  Builders do no I/O; Request() finalizes one and
 *  Send() is a shortcut for Request().Send().
 */

// Selected scopes requests to the lights matched by one selector
type Selected struct {
	client   *Client
	selector Select
}

// Select starts a request against the lights matched by sel
func (c *Client) Select(sel Select) Selected {
	return Selected{client: c, selector: sel}
}

func (s Selected) Selector() Select {
	return s.selector
}

func (s Selected) path(suffix string) string {
	return "/lights/" + url.PathEscape(s.selector.String()) + suffix
}

// List returns the lights matched by the selector.  Decode the response
// with Response.Lights.
func (s Selected) List() *Request {
	return newRequest(s.client, http.MethodGet, s.path(""), nil)
}

// SetState sets an absolute state on the selected lights
func (s Selected) SetState() SetState {
	return SetState{parent: s, attempts: DefaultAttempts}
}

// ChangeState adjusts the state of each selected light relative to its
// current state
func (s Selected) ChangeState() ChangeState {
	return ChangeState{parent: s, attempts: DefaultAttempts}
}

// Toggle turns the selected lights off if any of them are on, and on if
// they are all off
func (s Selected) Toggle() Toggle {
	return Toggle{parent: s, attempts: DefaultAttempts}
}

// ValidateColor asks the API how it interprets a color string
func (c *Client) ValidateColor(color Color) *Request {
	return newRequest(c, http.MethodGet, "/color?string="+url.QueryEscape(color.String()), nil)
}

type SetState struct {
	parent   Selected
	state    State
	attempts uint8
}

func (b SetState) Power(on bool) SetState {
	b.state = b.state.WithPower(on)
	return b
}

func (b SetState) Color(c Color) SetState {
	b.state = b.state.WithColor(c)
	return b
}

// Brightness overrides any brightness in the color
func (b SetState) Brightness(level float64) SetState {
	b.state = b.state.WithBrightness(level)
	return b
}

func (b SetState) Transition(d time.Duration) SetState {
	b.state = b.state.WithTransition(d)
	return b
}

func (b SetState) Infrared(level float64) SetState {
	b.state = b.state.WithInfrared(level)
	return b
}

// State replaces everything set so far
func (b SetState) State(s State) SetState {
	b.state = s
	return b
}

func (b SetState) Attempts(n uint8) SetState {
	b.attempts = clampAttempts(n)
	return b
}

func (b SetState) Validate() error {
	return b.state.Validate()
}

func (b SetState) Request() *Request {
	return newRequest(b.parent.client, http.MethodPut, b.parent.path("/state"), b.state).Attempts(b.attempts)
}

func (b SetState) Send(ctx context.Context) (*Response, error) {
	return b.Request().Send(ctx)
}

type ChangeState struct {
	parent   Selected
	change   StateChange
	attempts uint8
}

func (b ChangeState) Power(on bool) ChangeState {
	b.change = b.change.WithPower(on)
	return b
}

func (b ChangeState) Transition(d time.Duration) ChangeState {
	b.change = b.change.WithTransition(d)
	return b
}

func (b ChangeState) Hue(delta int16) ChangeState {
	b.change = b.change.WithHue(delta)
	return b
}

func (b ChangeState) Saturation(delta float64) ChangeState {
	b.change = b.change.WithSaturation(delta)
	return b
}

func (b ChangeState) Brightness(delta float64) ChangeState {
	b.change = b.change.WithBrightness(delta)
	return b
}

func (b ChangeState) Kelvin(delta int16) ChangeState {
	b.change = b.change.WithKelvin(delta)
	return b
}

func (b ChangeState) Infrared(delta float64) ChangeState {
	b.change = b.change.WithInfrared(delta)
	return b
}

func (b ChangeState) Attempts(n uint8) ChangeState {
	b.attempts = clampAttempts(n)
	return b
}

func (b ChangeState) Request() *Request {
	return newRequest(b.parent.client, http.MethodPost, b.parent.path("/state/delta"), b.change).Attempts(b.attempts)
}

func (b ChangeState) Send(ctx context.Context) (*Response, error) {
	return b.Request().Send(ctx)
}

type toggleBody struct {
	Duration Duration `json:"duration"`
}

type Toggle struct {
	parent     Selected
	transition *Duration
	attempts   uint8
}

// Transition fades the lights over d.  Without one the request has no body.
func (b Toggle) Transition(d time.Duration) Toggle {
	dur := Duration(d)
	b.transition = &dur
	return b
}

func (b Toggle) Attempts(n uint8) Toggle {
	b.attempts = clampAttempts(n)
	return b
}

func (b Toggle) Request() *Request {
	var body interface{}
	if b.transition != nil {
		body = toggleBody{Duration: *b.transition}
	}

	return newRequest(b.parent.client, http.MethodPost, b.parent.path("/toggle"), body).Attempts(b.attempts)
}

func (b Toggle) Send(ctx context.Context) (*Response, error) {
	return b.Request().Send(ctx)
}
