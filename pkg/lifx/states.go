package lifx

import (
	"context"
	"net/http"
)

type selectorState struct {
	Selector string `json:"selector"`
	State
}

type setStatesBody struct {
	States   []selectorState `json:"states,omitempty"`
	Defaults *State          `json:"defaults,omitempty"`
}

// SetStates sets different states on several selectors in one request.
// Defaults fill in fields the individual states leave unset.
type SetStates struct {
	client   *Client
	states   []selectorState
	defaults *State
	attempts uint8
}

func (c *Client) SetStates() SetStates {
	return SetStates{client: c, attempts: DefaultAttempts}
}

func (b SetStates) Add(sel Select, s State) SetStates {
	// copies share a backing array, force a new one
	b.states = append(b.states[:len(b.states):len(b.states)], selectorState{Selector: sel.String(), State: s})
	return b
}

func (b SetStates) Defaults(s State) SetStates {
	b.defaults = &s
	return b
}

func (b SetStates) Attempts(n uint8) SetStates {
	b.attempts = clampAttempts(n)
	return b
}

func (b SetStates) Validate() error {
	for _, s := range b.states {
		if err := s.State.Validate(); err != nil {
			return err
		}
	}

	if b.defaults != nil {
		return b.defaults.Validate()
	}

	return nil
}

func (b SetStates) Request() *Request {
	body := setStatesBody{States: b.states, Defaults: b.defaults}
	return newRequest(b.client, http.MethodPut, "/lights/states", body).Attempts(b.attempts)
}

func (b SetStates) Send(ctx context.Context) (*Response, error) {
	return b.Request().Send(ctx)
}

const (
	CycleForward  = "forward"
	CycleBackward = "backward"
)

type cycleBody struct {
	States    []State `json:"states"`
	Defaults  *State  `json:"defaults,omitempty"`
	Direction string  `json:"direction"`
}

// Cycle moves the selected lights to the next state in a list, based on
// which state they are closest to now
type Cycle struct {
	parent   Selected
	states   []State
	defaults *State
	reverse  bool
	attempts uint8
}

func (s Selected) Cycle() Cycle {
	return Cycle{parent: s, attempts: DefaultAttempts}
}

func (b Cycle) Add(next State) Cycle {
	b.states = append(b.states[:len(b.states):len(b.states)], next)
	return b
}

func (b Cycle) Defaults(s State) Cycle {
	b.defaults = &s
	return b
}

// Reverse flips the direction of the cycle
func (b Cycle) Reverse() Cycle {
	b.reverse = !b.reverse
	return b
}

func (b Cycle) Attempts(n uint8) Cycle {
	b.attempts = clampAttempts(n)
	return b
}

func (b Cycle) Request() *Request {
	body := cycleBody{
		States:    b.states,
		Defaults:  b.defaults,
		Direction: CycleForward,
	}
	if body.States == nil {
		body.States = []State{}
	}
	if b.reverse {
		body.Direction = CycleBackward
	}

	return newRequest(b.parent.client, http.MethodPost, b.parent.path("/cycle"), body).Attempts(b.attempts)
}

func (b Cycle) Send(ctx context.Context) (*Response, error) {
	return b.Request().Send(ctx)
}
