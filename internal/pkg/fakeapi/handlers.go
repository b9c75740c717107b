package fakeapi

import (
	"math"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/jake-scott/lifx-cloud/pkg/lifx"
)

// the router runs on encoded paths so selectors may contain '/'
func pathVar(r *http.Request, name string) (string, error) {
	return url.PathUnescape(mux.Vars(r)[name])
}

var namedHues = map[lifx.ColorKind]float64{
	lifx.ColorRed:    0,
	lifx.ColorOrange: 36,
	lifx.ColorYellow: 60,
	lifx.ColorGreen:  120,
	lifx.ColorBlue:   250,
	lifx.ColorPurple: 280,
	lifx.ColorPink:   325,
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func applyColor(l *lifx.Light, c lifx.Color) {
	if hue, ok := namedHues[c.Kind]; ok {
		l.Color.Hue = hue
		l.Color.Saturation = 1
		return
	}

	switch c.Kind {
	case lifx.ColorWhite:
		l.Color.Saturation = 0
	case lifx.ColorHue:
		l.Color.Hue = float64(c.Hue)
	case lifx.ColorSaturation:
		l.Color.Saturation = c.Level
	case lifx.ColorBrightness:
		l.Brightness = c.Level
	case lifx.ColorKelvin:
		l.Color.Kelvin = c.Kelvin
		l.Color.Saturation = 0
	}
}

func applyState(l *lifx.Light, st lifx.State) {
	if st.Power != nil {
		l.Power = *st.Power
	}
	if st.Color != nil {
		applyColor(l, *st.Color)
	}
	if st.Brightness != nil {
		l.Brightness = *st.Brightness
	}
}

// validState rejects the values the real API answers 422 for
func (s *Server) validState(w http.ResponseWriter, r *http.Request, st lifx.State) bool {
	if err := st.Validate(); err != nil {
		sendError(w, r, http.StatusUnprocessableEntity, "%s", err)
		return false
	}
	return true
}

func (s *Server) listLights(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched, ok := s.selected(w, r)
	if !ok {
		return
	}

	lights := make([]lifx.Light, 0, len(matched))
	for _, i := range matched {
		lights = append(lights, s.lights[i])
	}
	sendJSON(w, r, http.StatusOK, lights)
}

func (s *Server) setState(w http.ResponseWriter, r *http.Request) {
	var st lifx.State
	if err := decodeJSONBody(w, r, &st); err != nil {
		sendError(w, r, http.StatusBadRequest, "%s", err)
		return
	}
	if !s.validState(w, r, st) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched, ok := s.selected(w, r)
	if !ok {
		return
	}

	for _, i := range matched {
		applyState(&s.lights[i], st)
	}
	sendJSON(w, r, http.StatusMultiStatus, s.results(matched))
}

func (s *Server) changeState(w http.ResponseWriter, r *http.Request) {
	var ch lifx.StateChange
	if err := decodeJSONBody(w, r, &ch); err != nil {
		sendError(w, r, http.StatusBadRequest, "%s", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched, ok := s.selected(w, r)
	if !ok {
		return
	}

	for _, i := range matched {
		l := &s.lights[i]
		if ch.Power != nil {
			l.Power = *ch.Power
		}
		if ch.Brightness != nil {
			l.Brightness = clamp01(l.Brightness + *ch.Brightness)
		}
		if ch.Saturation != nil {
			l.Color.Saturation = clamp01(l.Color.Saturation + *ch.Saturation)
		}
		if ch.Hue != nil {
			l.Color.Hue = math.Mod(l.Color.Hue+float64(*ch.Hue)+360, 360)
		}
		if ch.Kelvin != nil {
			k := math.Max(lifx.MinKelvin, math.Min(lifx.MaxKelvin, float64(l.Color.Kelvin)+float64(*ch.Kelvin)))
			l.Color.Kelvin = uint16(k)
		}
	}
	sendJSON(w, r, http.StatusMultiStatus, s.results(matched))
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Duration *lifx.Duration `json:"duration"`
	}
	if err := decodeJSONBody(w, r, &body); err != nil {
		sendError(w, r, http.StatusBadRequest, "%s", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched, ok := s.selected(w, r)
	if !ok {
		return
	}

	anyOn := false
	for _, i := range matched {
		anyOn = anyOn || bool(s.lights[i].Power)
	}
	for _, i := range matched {
		s.lights[i].Power = lifx.Power(!anyOn)
	}
	sendJSON(w, r, http.StatusMultiStatus, s.results(matched))
}

func (s *Server) cycle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		States    []lifx.State `json:"states"`
		Defaults  *lifx.State  `json:"defaults"`
		Direction string       `json:"direction"`
	}
	if err := decodeJSONBody(w, r, &body); err != nil {
		sendError(w, r, http.StatusBadRequest, "%s", err)
		return
	}
	if len(body.States) < 2 || len(body.States) > 5 {
		sendError(w, r, http.StatusUnprocessableEntity, "states must have between 2 and 5 entries")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched, ok := s.selected(w, r)
	if !ok {
		return
	}

	// no notion of the closest state here, always move to the first
	next := body.States[0]
	if body.Direction == lifx.CycleBackward {
		next = body.States[len(body.States)-1]
	}
	for _, i := range matched {
		if body.Defaults != nil {
			applyState(&s.lights[i], *body.Defaults)
		}
		applyState(&s.lights[i], next)
	}
	sendJSON(w, r, http.StatusMultiStatus, s.results(matched))
}

func (s *Server) effect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Color   *lifx.Color `json:"color"`
		PowerOn *bool       `json:"power_on"`
	}
	if err := decodeJSONBody(w, r, &body); err != nil {
		sendError(w, r, http.StatusBadRequest, "%s", err)
		return
	}
	if body.Color == nil {
		sendError(w, r, http.StatusUnprocessableEntity, "color is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched, ok := s.selected(w, r)
	if !ok {
		return
	}

	if body.PowerOn == nil || *body.PowerOn {
		for _, i := range matched {
			s.lights[i].Power = lifx.PowerOn
		}
	}
	sendJSON(w, r, http.StatusMultiStatus, s.results(matched))
}

func (s *Server) setStates(w http.ResponseWriter, r *http.Request) {
	var body struct {
		States []struct {
			Selector string `json:"selector"`
			lifx.State
		} `json:"states"`
		Defaults *lifx.State `json:"defaults"`
	}
	if err := decodeJSONBody(w, r, &body); err != nil {
		sendError(w, r, http.StatusBadRequest, "%s", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type operation struct {
		Operation lifx.State   `json:"operation"`
		Results   []resultBody `json:"results"`
	}
	out := struct {
		Results []operation `json:"results"`
	}{Results: []operation{}}

	for _, st := range body.States {
		if !s.validState(w, r, st.State) {
			return
		}

		matched, err := s.matchSelector(st.Selector)
		if err != nil {
			sendError(w, r, http.StatusUnprocessableEntity, "%s", err)
			return
		}

		for _, i := range matched {
			if body.Defaults != nil {
				applyState(&s.lights[i], *body.Defaults)
			}
			applyState(&s.lights[i], st.State)
		}
		out.Results = append(out.Results, operation{Operation: st.State, Results: s.results(matched).Results})
	}

	sendJSON(w, r, http.StatusMultiStatus, out)
}

func (s *Server) listScenes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes := append([]lifx.Scene{}, s.scenes...)
	sendJSON(w, r, http.StatusOK, scenes)
}

func (s *Server) activateScene(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "uuid")
	if err != nil {
		sendError(w, r, http.StatusBadRequest, "bad scene id: %s", err)
		return
	}

	var body struct {
		Ignore    []string    `json:"ignore"`
		Overrides *lifx.State `json:"overrides"`
	}
	if err := decodeJSONBody(w, r, &body); err != nil {
		sendError(w, r, http.StatusBadRequest, "%s", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var scene *lifx.Scene
	for i := range s.scenes {
		if s.scenes[i].UUID == id {
			scene = &s.scenes[i]
		}
	}
	if scene == nil {
		sendError(w, r, http.StatusNotFound, "Could not find scene with id '%s'", id)
		return
	}

	ignored := map[string]bool{}
	for _, p := range body.Ignore {
		ignored[p] = true
	}

	var all []int
	for _, st := range scene.States {
		matched, err := s.matchSelector(st.Selector)
		if err != nil {
			continue
		}

		apply := lifx.State{}
		if st.Power != nil && !ignored["power"] {
			apply.Power = st.Power
		}
		if st.Brightness != nil && !ignored["brightness"] {
			apply.Brightness = st.Brightness
		}
		if body.Overrides != nil {
			if body.Overrides.Power != nil {
				apply.Power = body.Overrides.Power
			}
			if body.Overrides.Brightness != nil {
				apply.Brightness = body.Overrides.Brightness
			}
		}

		for _, i := range matched {
			applyState(&s.lights[i], apply)
		}
		all = append(all, matched...)
	}

	sendJSON(w, r, http.StatusMultiStatus, s.results(all))
}

func (s *Server) validateColor(w http.ResponseWriter, r *http.Request) {
	c, err := lifx.ParseColor(r.URL.Query().Get("string"))
	if err == nil {
		err = c.Validate()
	}
	if err != nil {
		sendError(w, r, http.StatusUnprocessableEntity, "Unable to parse color: %s", err)
		return
	}

	var info lifx.ColorInfo
	var l lifx.Light
	l.Color.Saturation = -1
	l.Brightness = -1
	applyColor(&l, c)

	if _, named := namedHues[c.Kind]; named || c.Kind == lifx.ColorHue {
		info.Hue = &l.Color.Hue
	}
	if l.Color.Saturation >= 0 {
		info.Saturation = &l.Color.Saturation
	}
	if l.Brightness >= 0 {
		info.Brightness = &l.Brightness
	}
	if c.Kind == lifx.ColorKelvin {
		info.Kelvin = &l.Color.Kelvin
	}

	sendJSON(w, r, http.StatusOK, info)
}
