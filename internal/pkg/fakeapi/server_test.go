package fakeapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jake-scott/lifx-cloud/pkg/lifx"
)

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMatchSelector(t *testing.T) {
	s := New("tok").WithLights(DemoLights()...)

	tests := []struct {
		selector string
		want     int
	}{
		{"all", 3},
		{"label:Lamp", 1},
		{"id:d073d5000002", 1},
		{"group:Living Room", 2},
		{"location:Home", 3},
		{"group:Living Room:random", 1},
		{"label:Strip|0|1", 1},
		{"label:Nobody", 0},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			matched, err := s.matchSelector(tt.selector)
			require.NoError(t, err)
			assert.Len(t, matched, tt.want)
		})
	}

	_, err := s.matchSelector("colour:red")
	assert.Error(t, err)
}

func TestHandler_Auth(t *testing.T) {
	s := New("tok").WithLights(DemoLights()...)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/v1/lights/all", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", gjson.GetBytes(rec.Body.Bytes(), "error").String())

	rec = do(t, h, http.MethodGet, "/v1/lights/all", "tok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), gjson.GetBytes(rec.Body.Bytes(), "#").Int())
	assert.NotEmpty(t, rec.Header().Get("X-Txn-ID"))

	assert.Len(t, s.Requests(), 2, "rejected requests are recorded too")
}

func TestHandler_Selectors(t *testing.T) {
	h := New("tok").WithLights(DemoLights()...).Handler()

	rec := do(t, h, http.MethodGet, "/v1/lights/group:Living%20Room", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), gjson.GetBytes(rec.Body.Bytes(), "#").Int())

	rec = do(t, h, http.MethodGet, "/v1/lights/label:Nobody", "tok", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, gjson.GetBytes(rec.Body.Bytes(), "error").String(), "label:Nobody")

	rec = do(t, h, http.MethodGet, "/v1/lights/colour:red", "tok", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_SetState(t *testing.T) {
	s := New("tok").WithLights(DemoLights()...)
	h := s.Handler()

	rec := do(t, h, http.MethodPut, "/v1/lights/label:Lamp/state", "tok", `{"power":"on","color":"kelvin:2500","brightness":0.2}`)
	require.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Equal(t, "ok", gjson.GetBytes(rec.Body.Bytes(), "results.0.status").String())

	var lamp lifx.Light
	for _, l := range s.Lights() {
		if l.Label == "Lamp" {
			lamp = l
		}
	}
	assert.True(t, bool(lamp.Power))
	assert.Equal(t, uint16(2500), lamp.Color.Kelvin)
	assert.Equal(t, 0.2, lamp.Brightness)

	rec = do(t, h, http.MethodPut, "/v1/lights/all/state", "tok", `{"brightness":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPut, "/v1/lights/all/state", "tok", `{"power":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_OfflineLights(t *testing.T) {
	lights := DemoLights()
	lights[0].Connected = false
	h := New("tok").WithLights(lights...).Handler()

	rec := do(t, h, http.MethodPost, "/v1/lights/all/toggle", "tok", "")
	require.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Equal(t, "offline", gjson.GetBytes(rec.Body.Bytes(), "results.0.status").String())
	assert.Equal(t, "ok", gjson.GetBytes(rec.Body.Bytes(), "results.1.status").String())
}

func TestHandler_Canned(t *testing.T) {
	s := New("tok").WithLights(DemoLights()...)
	h := s.Handler()
	s.Queue(RateLimited(0), Reply{Status: http.StatusServiceUnavailable})

	rec := do(t, h, http.MethodGet, "/v1/lights/all", "tok", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(lifx.RateLimitResetHeader))

	rec = do(t, h, http.MethodGet, "/v1/lights/all", "tok", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/lights/all", "tok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_ValidateColor(t *testing.T) {
	h := New("tok").Handler()

	rec := do(t, h, http.MethodGet, "/v1/color?string=red", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.Bytes()
	assert.Equal(t, 0.0, gjson.GetBytes(body, "hue").Float())
	assert.Equal(t, 1.0, gjson.GetBytes(body, "saturation").Float())
	assert.Equal(t, gjson.Null, gjson.GetBytes(body, "brightness").Type)
	assert.Equal(t, gjson.Null, gjson.GetBytes(body, "kelvin").Type)

	rec = do(t, h, http.MethodGet, "/v1/color?string=brightness%3A0.5", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.5, gjson.GetBytes(rec.Body.Bytes(), "brightness").Float())
	assert.Equal(t, gjson.Null, gjson.GetBytes(rec.Body.Bytes(), "hue").Type)

	rec = do(t, h, http.MethodGet, "/v1/color?string=kelvin%3A99999", "tok", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDemoScene(t *testing.T) {
	lights := DemoLights()
	sc := DemoScene("Evening", lights)

	assert.Equal(t, "Evening", sc.Name)
	require.Len(t, sc.States, len(lights))
	assert.Equal(t, "id:"+lights[0].ID, sc.States[0].Selector)
	assert.Equal(t, lifx.PowerOn, *sc.States[0].Power)
}
