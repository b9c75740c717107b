package lifx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-openapi/swag"
)

type waveform struct {
	Color   Color     `json:"color"`
	From    *Color    `json:"from_color,omitempty"`
	Period  *Duration `json:"period,omitempty"`
	Cycles  *float64  `json:"cycles,omitempty"`
	Persist *bool     `json:"persist,omitempty"`
	PowerOn *bool     `json:"power_on,omitempty"`
}

type breatheBody struct {
	waveform
	Peak *float64 `json:"peak,omitempty"`
}

func (w waveform) from(c Color) waveform {
	w.From = &c
	return w
}

func (w waveform) period(d time.Duration) waveform {
	p := Duration(d)
	w.Period = &p
	return w
}

// Breathe fades the selected lights between two colors
type Breathe struct {
	parent   Selected
	body     breatheBody
	attempts uint8
}

func (s Selected) Breathe(c Color) Breathe {
	return Breathe{parent: s, body: breatheBody{waveform: waveform{Color: c}}, attempts: DefaultAttempts}
}

// From is the starting color, the current color when unset
func (b Breathe) From(c Color) Breathe {
	b.body.waveform = b.body.from(c)
	return b
}

func (b Breathe) Period(d time.Duration) Breathe {
	b.body.waveform = b.body.period(d)
	return b
}

func (b Breathe) Cycles(n float64) Breathe {
	b.body.Cycles = swag.Float64(n)
	return b
}

// Persist leaves the lights on the final color instead of restoring
func (b Breathe) Persist(keep bool) Breathe {
	b.body.Persist = swag.Bool(keep)
	return b
}

// PowerOn turns on lights that are off before running the effect
func (b Breathe) PowerOn(force bool) Breathe {
	b.body.PowerOn = swag.Bool(force)
	return b
}

// Peak is where in each period the target color is at its maximum, 0-1
func (b Breathe) Peak(frac float64) Breathe {
	b.body.Peak = swag.Float64(frac)
	return b
}

func (b Breathe) Attempts(n uint8) Breathe {
	b.attempts = clampAttempts(n)
	return b
}

func (b Breathe) Validate() error {
	if err := b.body.Color.Validate(); err != nil {
		return err
	}
	if b.body.From != nil {
		return b.body.From.Validate()
	}
	return nil
}

func (b Breathe) Request() *Request {
	return newRequest(b.parent.client, http.MethodPost, b.parent.path("/effects/breathe"), b.body).Attempts(b.attempts)
}

func (b Breathe) Send(ctx context.Context) (*Response, error) {
	return b.Request().Send(ctx)
}

// Pulse switches the selected lights between two colors
type Pulse struct {
	parent   Selected
	body     waveform
	attempts uint8
}

func (s Selected) Pulse(c Color) Pulse {
	return Pulse{parent: s, body: waveform{Color: c}, attempts: DefaultAttempts}
}

func (b Pulse) From(c Color) Pulse {
	b.body = b.body.from(c)
	return b
}

func (b Pulse) Period(d time.Duration) Pulse {
	b.body = b.body.period(d)
	return b
}

func (b Pulse) Cycles(n float64) Pulse {
	b.body.Cycles = swag.Float64(n)
	return b
}

func (b Pulse) Persist(keep bool) Pulse {
	b.body.Persist = swag.Bool(keep)
	return b
}

func (b Pulse) PowerOn(force bool) Pulse {
	b.body.PowerOn = swag.Bool(force)
	return b
}

func (b Pulse) Attempts(n uint8) Pulse {
	b.attempts = clampAttempts(n)
	return b
}

func (b Pulse) Validate() error {
	if err := b.body.Color.Validate(); err != nil {
		return err
	}
	if b.body.From != nil {
		return b.body.From.Validate()
	}
	return nil
}

func (b Pulse) Request() *Request {
	return newRequest(b.parent.client, http.MethodPost, b.parent.path("/effects/pulse"), b.body).Attempts(b.attempts)
}

func (b Pulse) Send(ctx context.Context) (*Response, error) {
	return b.Request().Send(ctx)
}
