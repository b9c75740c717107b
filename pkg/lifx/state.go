package lifx

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Power is a light power state, on the wire as "on" or "off"
type Power bool

const (
	PowerOn  Power = true
	PowerOff Power = false
)

func (p Power) String() string {
	if p {
		return "on"
	}
	return "off"
}

func (p Power) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// anything but "on" is off
func (p *Power) UnmarshalText(text []byte) error {
	*p = string(text) == "on"
	return nil
}

// Duration is a transition time, on the wire as seconds with millisecond
// precision
type Duration time.Duration

func (d Duration) Seconds() float64 {
	ms := time.Duration(d).Milliseconds()
	return float64(ms) / 1000
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Seconds())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return err
	}

	if secs < 0 || math.IsNaN(secs) {
		return fmt.Errorf("invalid duration: %v", secs)
	}

	*d = Duration(time.Duration(math.Round(secs*1000)) * time.Millisecond)
	return nil
}

/*
 *  State is an absolute target for the selected lights.  Every field is
 *  optional and nil fields are left off the wire, never defaulted.
 */
type State struct {
	Power *Power `json:"power,omitempty"`
	Color *Color `json:"color,omitempty"`
	// 0-1, takes priority over any brightness in Color
	Brightness *float64  `json:"brightness,omitempty"`
	Duration   *Duration `json:"duration,omitempty"`
	// 0-1, for infrared capable lights
	Infrared *float64 `json:"infrared,omitempty"`
}

func NewState() State {
	return State{}
}

func (s State) WithPower(on bool) State {
	p := Power(on)
	s.Power = &p
	return s
}

func (s State) WithColor(c Color) State {
	s.Color = &c
	return s
}

func (s State) WithBrightness(b float64) State {
	s.Brightness = &b
	return s
}

func (s State) WithTransition(d time.Duration) State {
	dur := Duration(d)
	s.Duration = &dur
	return s
}

func (s State) WithInfrared(ir float64) State {
	s.Infrared = &ir
	return s
}

// Validate checks the color and brightness override against the ranges the
// API accepts
func (s State) Validate() error {
	if s.Color != nil {
		if err := s.Color.Validate(); err != nil {
			return err
		}
	}

	if s.Brightness != nil {
		if err := Brightness(*s.Brightness).Validate(); err != nil {
			return err
		}
	}

	return nil
}

/*
 *  StateChange is a set of deltas applied by the API to the current state of
 *  each selected light.
 */
type StateChange struct {
	Power      *Power    `json:"power,omitempty"`
	Duration   *Duration `json:"duration,omitempty"`
	Infrared   *float64  `json:"infrared,omitempty"`
	Hue        *int16    `json:"hue,omitempty"`
	Saturation *float64  `json:"saturation,omitempty"`
	Brightness *float64  `json:"brightness,omitempty"`
	Kelvin     *int16    `json:"kelvin,omitempty"`
}

func NewStateChange() StateChange {
	return StateChange{}
}

func (c StateChange) WithPower(on bool) StateChange {
	p := Power(on)
	c.Power = &p
	return c
}

func (c StateChange) WithTransition(d time.Duration) StateChange {
	dur := Duration(d)
	c.Duration = &dur
	return c
}

func (c StateChange) WithInfrared(delta float64) StateChange {
	c.Infrared = &delta
	return c
}

func (c StateChange) WithHue(delta int16) StateChange {
	c.Hue = &delta
	return c
}

func (c StateChange) WithSaturation(delta float64) StateChange {
	c.Saturation = &delta
	return c
}

func (c StateChange) WithBrightness(delta float64) StateChange {
	c.Brightness = &delta
	return c
}

func (c StateChange) WithKelvin(delta int16) StateChange {
	c.Kelvin = &delta
	return c
}
