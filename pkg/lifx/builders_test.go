package lifx

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	oaerrors "github.com/go-openapi/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func bodyOf(t *testing.T, r *Request) []byte {
	t.Helper()
	b, err := json.Marshal(r.Body())
	require.NoError(t, err)
	return b
}

func TestBuilders_Paths(t *testing.T) {
	c := NewClient("tok")
	lounge := c.Select(Label("Living Room"))

	tests := []struct {
		name   string
		req    *Request
		method string
		path   string
	}{
		{"list all", c.Select(All()).List(), http.MethodGet, "/lights/all"},
		{"list escapes spaces", lounge.List(), http.MethodGet, "/lights/label:Living%20Room"},
		{"set state", lounge.SetState().Request(), http.MethodPut, "/lights/label:Living%20Room/state"},
		{"change state", lounge.ChangeState().Request(), http.MethodPost, "/lights/label:Living%20Room/state/delta"},
		{"toggle", lounge.Toggle().Request(), http.MethodPost, "/lights/label:Living%20Room/toggle"},
		{"cycle", lounge.Cycle().Request(), http.MethodPost, "/lights/label:Living%20Room/cycle"},
		{"breathe", lounge.Breathe(Red).Request(), http.MethodPost, "/lights/label:Living%20Room/effects/breathe"},
		{"pulse", lounge.Pulse(Red).Request(), http.MethodPost, "/lights/label:Living%20Room/effects/pulse"},
		{"zones", c.Select(ID("d073d5000002").Zoned(ZoneList(1, 2))).List(), http.MethodGet, "/lights/id:d073d5000002%7C1%7C2"},
		{"set states", c.SetStates().Request(), http.MethodPut, "/lights/states"},
		{"scenes", c.Scenes().List(), http.MethodGet, "/scenes"},
		{"activate", c.Scenes().Activate("abc").Request(), http.MethodPut, "/scenes/scene_id:abc/activate"},
		{"validate color", c.ValidateColor(Hue(120)), http.MethodGet, "/color?string=hue%3A120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.method, tt.req.Method())
			assert.Equal(t, tt.path, tt.req.Path())
			assert.Equal(t, DefaultAttempts, tt.req.AttemptBudget())
		})
	}
}

func TestBuilders_Attempts(t *testing.T) {
	sel := NewClient("tok").Select(All())

	assert.Equal(t, uint8(1), sel.SetState().Attempts(0).Request().AttemptBudget())
	assert.Equal(t, uint8(5), sel.SetState().Attempts(5).Request().AttemptBudget())
	assert.Equal(t, uint8(255), sel.Toggle().Attempts(255).Request().AttemptBudget())

	req := sel.List()
	more := req.Attempts(3)
	assert.Equal(t, uint8(1), req.AttemptBudget(), "receiver is untouched")
	assert.Equal(t, uint8(3), more.AttemptBudget())
	assert.Equal(t, uint8(1), more.Attempts(0).AttemptBudget())
	assert.Same(t, req, req.Request())
}

func TestSetState_Body(t *testing.T) {
	req := NewClient("tok").Select(All()).SetState().
		Power(true).
		Color(Blue).
		Brightness(0.5).
		Transition(2 * time.Second).
		Request()

	b := bodyOf(t, req)
	assert.Equal(t, "on", gjson.GetBytes(b, "power").String())
	assert.Equal(t, "blue", gjson.GetBytes(b, "color").String())
	assert.Equal(t, 0.5, gjson.GetBytes(b, "brightness").Float())
	assert.Equal(t, 2.0, gjson.GetBytes(b, "duration").Float())
	assert.False(t, gjson.GetBytes(b, "infrared").Exists())
}

func TestSetState_IsAValue(t *testing.T) {
	base := NewClient("tok").Select(All()).SetState().Power(true)
	red := base.Color(Red)
	blue := base.Color(Blue)

	assert.False(t, gjson.GetBytes(bodyOf(t, base.Request()), "color").Exists())
	assert.Equal(t, "red", gjson.GetBytes(bodyOf(t, red.Request()), "color").String())
	assert.Equal(t, "blue", gjson.GetBytes(bodyOf(t, blue.Request()), "color").String())

	replaced := red.State(NewState().WithInfrared(1))
	b := bodyOf(t, replaced.Request())
	assert.False(t, gjson.GetBytes(b, "color").Exists())
	assert.Equal(t, 1.0, gjson.GetBytes(b, "infrared").Float())
}

func TestSetState_Validate(t *testing.T) {
	sel := NewClient("tok").Select(All())

	assert.NoError(t, sel.SetState().Color(Kelvin(2700)).Validate())
	assert.Error(t, sel.SetState().Color(Hue(400)).Validate())
	assert.Error(t, sel.SetState().Brightness(-0.1).Validate())
}

func TestChangeState_Body(t *testing.T) {
	b := bodyOf(t, NewClient("tok").Select(All()).ChangeState().
		Hue(45).
		Saturation(-0.2).
		Kelvin(-300).
		Infrared(0.1).
		Request())

	assert.Equal(t, int64(45), gjson.GetBytes(b, "hue").Int())
	assert.Equal(t, -0.2, gjson.GetBytes(b, "saturation").Float())
	assert.Equal(t, int64(-300), gjson.GetBytes(b, "kelvin").Int())
	assert.Equal(t, 0.1, gjson.GetBytes(b, "infrared").Float())
	assert.False(t, gjson.GetBytes(b, "power").Exists())
}

func TestToggle_Body(t *testing.T) {
	sel := NewClient("tok").Select(All())

	assert.Nil(t, sel.Toggle().Request().Body())

	b := bodyOf(t, sel.Toggle().Transition(1500*time.Millisecond).Request())
	assert.JSONEq(t, `{"duration":1.5}`, string(b))
}

func TestSetStates_Body(t *testing.T) {
	base := NewClient("tok").SetStates().
		Add(Label("Lamp"), NewState().WithPower(true)).
		Defaults(NewState().WithTransition(time.Second))

	// appending to a shared prefix must not leak between copies
	a := base.Add(Group("Kitchen"), NewState().WithColor(Red))
	b := base.Add(Group("Bedroom"), NewState().WithColor(Blue))

	ab := bodyOf(t, a.Request())
	bb := bodyOf(t, b.Request())

	require.Equal(t, int64(2), gjson.GetBytes(ab, "states.#").Int())
	assert.Equal(t, "label:Lamp", gjson.GetBytes(ab, "states.0.selector").String())
	assert.Equal(t, "on", gjson.GetBytes(ab, "states.0.power").String())
	assert.Equal(t, "group:Kitchen", gjson.GetBytes(ab, "states.1.selector").String())
	assert.Equal(t, "red", gjson.GetBytes(ab, "states.1.color").String())
	assert.Equal(t, 1.0, gjson.GetBytes(ab, "defaults.duration").Float())

	assert.Equal(t, "group:Bedroom", gjson.GetBytes(bb, "states.1.selector").String())
	assert.Equal(t, int64(1), gjson.GetBytes(bodyOf(t, base.Request()), "states.#").Int())

	assert.Error(t, a.Add(All(), NewState().WithBrightness(2)).Validate())
	assert.Error(t, a.Defaults(NewState().WithColor(Kelvin(1))).Validate())
	assert.NoError(t, a.Validate())
}

func TestCycle_Body(t *testing.T) {
	sel := NewClient("tok").Select(All())

	empty := bodyOf(t, sel.Cycle().Request())
	assert.JSONEq(t, `{"states":[],"direction":"forward"}`, string(empty))

	cyc := sel.Cycle().
		Add(NewState().WithBrightness(1)).
		Add(NewState().WithBrightness(0.2)).
		Defaults(NewState().WithPower(true))

	b := bodyOf(t, cyc.Reverse().Request())
	assert.Equal(t, int64(2), gjson.GetBytes(b, "states.#").Int())
	assert.Equal(t, "backward", gjson.GetBytes(b, "direction").String())
	assert.Equal(t, "on", gjson.GetBytes(b, "defaults.power").String())

	assert.Equal(t, "forward", gjson.GetBytes(bodyOf(t, cyc.Reverse().Reverse().Request()), "direction").String())
}

func TestEffects_Body(t *testing.T) {
	sel := NewClient("tok").Select(All())

	b := bodyOf(t, sel.Breathe(Purple).
		From(White).
		Period(500*time.Millisecond).
		Cycles(2.5).
		Persist(false).
		PowerOn(true).
		Peak(0.2).
		Request())

	assert.Equal(t, "purple", gjson.GetBytes(b, "color").String())
	assert.Equal(t, "white", gjson.GetBytes(b, "from_color").String())
	assert.Equal(t, 0.5, gjson.GetBytes(b, "period").Float())
	assert.Equal(t, 2.5, gjson.GetBytes(b, "cycles").Float())
	assert.True(t, gjson.GetBytes(b, "persist").Exists())
	assert.False(t, gjson.GetBytes(b, "persist").Bool())
	assert.True(t, gjson.GetBytes(b, "power_on").Bool())
	assert.Equal(t, 0.2, gjson.GetBytes(b, "peak").Float())
	assert.False(t, gjson.GetBytes(b, "selector").Exists())

	p := bodyOf(t, sel.Pulse(Green).Request())
	assert.JSONEq(t, `{"color":"green"}`, string(p))

	assert.Error(t, sel.Pulse(Green).From(Saturation(3)).Validate())
	assert.Error(t, sel.Breathe(Hue(361)).Validate())
	assert.NoError(t, sel.Breathe(Hue(360)).From(Red).Validate())
}

func TestActivate(t *testing.T) {
	scenes := NewClient("tok").Scenes()
	id := "f6e4f4e2-6c5b-4e1e-9a43-54b0c1b1c0a7"

	base := scenes.Activate(id).Ignore("power")
	a := base.Ignore("brightness")
	b := base.Ignore("color")

	ab := bodyOf(t, a.Transition(3*time.Second).Request())
	assert.Equal(t, `["power","brightness"]`, gjson.GetBytes(ab, "ignore").Raw)
	assert.Equal(t, 3.0, gjson.GetBytes(ab, "duration").Float())
	assert.Equal(t, `["power","color"]`, gjson.GetBytes(bodyOf(t, b.Request()), "ignore").Raw)

	ov := bodyOf(t, scenes.Activate(id).Overrides(NewState().WithBrightness(0.3)).Request())
	assert.Equal(t, 0.3, gjson.GetBytes(ov, "overrides.brightness").Float())
	assert.False(t, gjson.GetBytes(ov, "ignore").Exists())

	assert.NoError(t, base.Validate())
	assert.Error(t, scenes.Activate("not-a-uuid").Validate())
	assert.Error(t, base.Overrides(NewState().WithBrightness(7)).Validate())
}

func TestActivate_ValidateErrors(t *testing.T) {
	scenes := NewClient("tok").Scenes()
	id := "f6e4f4e2-6c5b-4e1e-9a43-54b0c1b1c0a7"
	badColor := NewState().WithColor(Hue(400))

	t.Run("bad override color", func(t *testing.T) {
		err := scenes.Activate(id).Overrides(badColor).Validate()

		var verr *ColorValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, HueTooLarge, verr.Kind)
	})

	t.Run("bad scene id", func(t *testing.T) {
		err := scenes.Activate("not-a-uuid").Validate()

		var verr *oaerrors.Validation
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "scene_id", verr.Name)
	})

	t.Run("both checks fail", func(t *testing.T) {
		err := scenes.Activate("not-a-uuid").Overrides(badColor).Validate()

		var cerr *ColorValidationError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, HueTooLarge, cerr.Kind)

		var verr *oaerrors.Validation
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, err.Error(), "hue 400 is too large")
	})
}
