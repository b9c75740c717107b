package lifx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jake-scott/lifx-cloud/internal/pkg/fakeapi"
	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
	"github.com/jake-scott/lifx-cloud/pkg/lifx"
	"github.com/jake-scott/lifx-cloud/pkg/middlewares"
)

const testToken = "c87c73a896b554367fac61f71dd3656af8d93a525a4e87df5952c6078a89d192"

func newFake(t *testing.T) (*fakeapi.Server, *lifx.Client) {
	t.Helper()

	fake := fakeapi.New(testToken).WithLights(fakeapi.DemoLights()...)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	client := lifx.NewClient(testToken).
		WithBaseURL(srv.URL + "/v1").
		WithRateLimitFallback(10 * time.Millisecond)

	return fake, client
}

func serverError(msg string) fakeapi.Reply {
	return fakeapi.Reply{Status: http.StatusInternalServerError, Body: map[string]string{"error": msg}}
}

func TestSend_RetriesServerErrors(t *testing.T) {
	fake, client := newFake(t)
	fake.Queue(serverError("one"), serverError("two"), serverError("three"))

	_, err := client.Select(lifx.All()).List().Attempts(3).Send(context.Background())

	var apiErr *lifx.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, lifx.KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Contains(t, err.Error(), "three", "the last outcome is returned")
	assert.Len(t, fake.Requests(), 3)
}

func TestSend_RecoversAfterServerError(t *testing.T) {
	fake, client := newFake(t)
	fake.Queue(serverError("hiccup"))

	resp, err := client.Select(lifx.All()).List().Attempts(2).Send(context.Background())
	require.NoError(t, err)

	lights, err := resp.Lights()
	require.NoError(t, err)
	assert.Len(t, lights, 3)
	assert.Len(t, fake.Requests(), 2)
}

func TestSend_SingleAttemptByDefault(t *testing.T) {
	fake, client := newFake(t)
	fake.Queue(serverError("boom"))

	_, err := client.Select(lifx.All()).List().Send(context.Background())

	kind, _ := lifx.KindOf(err)
	assert.Equal(t, lifx.KindServer, kind)
	assert.Len(t, fake.Requests(), 1)
}

func TestSend_ClientErrorsAreNotRetried(t *testing.T) {
	fake, client := newFake(t)

	bad := lifx.NewClient("wrong").WithBaseURL(client.BaseURL())
	_, err := bad.Select(lifx.All()).List().Attempts(5).Send(context.Background())

	kind, ok := lifx.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, lifx.KindBadAccessToken, kind)
	assert.True(t, lifx.IsClientError(err))
	assert.Len(t, fake.Requests(), 1)
}

func TestSend_NotFoundCarriesURL(t *testing.T) {
	_, client := newFake(t)

	_, err := client.Select(lifx.Label("Nope")).List().Attempts(3).Send(context.Background())

	var apiErr *lifx.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, lifx.KindNotFound, apiErr.Kind)
	assert.Equal(t, client.BaseURL()+"/lights/label:Nope", apiErr.URL)
}

func TestSend_BadRequestMessage(t *testing.T) {
	_, client := newFake(t)

	// not validated locally, the server rejects it
	_, err := client.Select(lifx.All()).SetState().Color(lifx.Hue(400)).Send(context.Background())

	var apiErr *lifx.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, lifx.KindBadRequest, apiErr.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, err.Error(), "hue 400 is too large")
}

func TestSend_RateLimited(t *testing.T) {
	t.Run("waits for the reset time", func(t *testing.T) {
		fake, client := newFake(t)
		fake.Queue(fakeapi.RateLimited(0))

		_, err := client.Select(lifx.All()).List().Attempts(2).Send(context.Background())
		require.NoError(t, err)
		assert.Len(t, fake.Requests(), 2)
	})

	t.Run("falls back without a reset header", func(t *testing.T) {
		fake, client := newFake(t)
		fake.Queue(fakeapi.Reply{Status: http.StatusTooManyRequests}, fakeapi.Reply{Status: http.StatusTooManyRequests})

		start := time.Now()
		_, err := client.Select(lifx.All()).List().Attempts(3).Send(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, int64(time.Since(start)), int64(20*time.Millisecond))
		assert.Len(t, fake.Requests(), 3)
	})

	t.Run("budget exhausted", func(t *testing.T) {
		fake, client := newFake(t)
		fake.Queue(fakeapi.RateLimited(time.Minute))

		_, err := client.Select(lifx.All()).List().Send(context.Background())

		var apiErr *lifx.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, lifx.KindRateLimited, apiErr.Kind)
		assert.False(t, apiErr.Reset.IsZero())
		assert.True(t, apiErr.IsClientError())
		assert.Len(t, fake.Requests(), 1)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		fake, client := newFake(t)
		fake.Queue(fakeapi.RateLimited(time.Hour))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Select(lifx.All()).List().Attempts(2).Send(ctx)
		require.Error(t, err)

		_, isAPI := lifx.KindOf(err)
		assert.False(t, isAPI)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Len(t, fake.Requests(), 1)
	})
}

func TestSend_Headers(t *testing.T) {
	fake, client := newFake(t)

	ctx := logging.WithTxnID(context.Background(), "txn-1234")
	_, err := client.Select(lifx.All()).SetState().Power(true).Send(ctx)
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)

	h := reqs[0].Header
	assert.Equal(t, "Bearer "+testToken, h.Get("Authorization"))
	assert.True(t, strings.HasPrefix(h.Get("User-Agent"), "lifx-cloud/"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "txn-1234", h.Get(middlewares.TxnIDHeader))
	assert.JSONEq(t, `{"power":"on"}`, string(reqs[0].Body))
}

func TestCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("set state on a group", func(t *testing.T) {
		fake, client := newFake(t)

		resp, err := client.Select(lifx.Group("Living Room")).SetState().Power(true).Brightness(0.4).Send(ctx)
		require.NoError(t, err)
		assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)

		results := resp.Results()
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, lifx.Reachable, r.Status)
		}

		for _, l := range fake.Lights() {
			assert.Equal(t, l.Group.Name == "Living Room", bool(l.Power), l.Label)
		}
	})

	t.Run("selector with spaces and zones", func(t *testing.T) {
		fake, client := newFake(t)

		sel := lifx.Label("Strip").Zoned(lifx.ZoneRange(0, 4))
		_, err := client.Select(sel).SetState().Color(lifx.Red).Send(ctx)
		require.NoError(t, err)

		assert.Equal(t, "/v1/lights/label:Strip%7C0%7C1%7C2%7C3/state", fake.Requests()[0].Path)
	})

	t.Run("toggle", func(t *testing.T) {
		fake, client := newFake(t)

		_, err := client.Select(lifx.Label("Lamp")).Toggle().Send(ctx)
		require.NoError(t, err)
		_, err = client.Select(lifx.All()).Toggle().Transition(time.Second).Send(ctx)
		require.NoError(t, err)

		for _, l := range fake.Lights() {
			assert.False(t, bool(l.Power), "one light was on so all turn off")
		}
	})

	t.Run("change state", func(t *testing.T) {
		fake, client := newFake(t)

		_, err := client.Select(lifx.All()).ChangeState().Brightness(-0.25).Hue(-90).Send(ctx)
		require.NoError(t, err)

		for _, l := range fake.Lights() {
			assert.Equal(t, 0.75, l.Brightness)
			assert.Equal(t, 270.0, l.Color.Hue)
		}
	})

	t.Run("set states", func(t *testing.T) {
		fake, client := newFake(t)

		resp, err := client.SetStates().
			Add(lifx.Label("Lamp"), lifx.NewState().WithPower(true)).
			Add(lifx.Group("Kitchen"), lifx.NewState().WithBrightness(0.1)).
			Send(ctx)
		require.NoError(t, err)
		assert.Len(t, resp.Results(), 2)

		for _, l := range fake.Lights() {
			switch l.Label {
			case "Lamp":
				assert.True(t, bool(l.Power))
			case "Pendant":
				assert.Equal(t, 0.1, l.Brightness)
			}
		}
	})

	t.Run("cycle", func(t *testing.T) {
		fake, client := newFake(t)

		cyc := client.Select(lifx.All()).Cycle().
			Add(lifx.NewState().WithBrightness(0.3)).
			Add(lifx.NewState().WithBrightness(0.6))

		_, err := cyc.Reverse().Send(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0.6, fake.Lights()[0].Brightness)

		_, err = client.Select(lifx.All()).Cycle().Add(lifx.NewState()).Send(ctx)
		kind, _ := lifx.KindOf(err)
		assert.Equal(t, lifx.KindBadRequest, kind)
	})

	t.Run("effects", func(t *testing.T) {
		fake, client := newFake(t)

		_, err := client.Select(lifx.ID("d073d5000001")).Breathe(lifx.Blue).Cycles(3).Send(ctx)
		require.NoError(t, err)
		_, err = client.Select(lifx.ID("d073d5000002")).Pulse(lifx.Green).PowerOn(false).Send(ctx)
		require.NoError(t, err)

		lights := fake.Lights()
		assert.True(t, bool(lights[0].Power))
		assert.False(t, bool(lights[1].Power))
	})

	t.Run("validate color", func(t *testing.T) {
		_, client := newFake(t)

		resp, err := client.ValidateColor(lifx.Kelvin(2700)).Send(ctx)
		require.NoError(t, err)

		info, err := resp.ColorInfo()
		require.NoError(t, err)
		require.NotNil(t, info.Kelvin)
		assert.Equal(t, uint16(2700), *info.Kelvin)
		assert.Nil(t, info.Hue)

		_, err = client.ValidateColor(lifx.Custom("hue:")).Send(ctx)
		kind, _ := lifx.KindOf(err)
		assert.Equal(t, lifx.KindBadRequest, kind)
	})
}

func TestScenes(t *testing.T) {
	ctx := context.Background()

	lights := fakeapi.DemoLights()
	scene := fakeapi.DemoScene("Evening", lights)
	fake := fakeapi.New(testToken).WithLights(lights...).WithScenes(scene)
	srv := httptest.NewServer(fake.Handler())
	defer srv.Close()

	client := lifx.NewClient(testToken).WithBaseURL(srv.URL + "/v1")

	resp, err := client.Scenes().List().Send(ctx)
	require.NoError(t, err)
	scenes, err := resp.Scenes()
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	assert.Equal(t, "Evening", scenes[0].Name)

	act := client.Scenes().Activate(scenes[0].UUID).Ignore("brightness").Transition(time.Second)
	require.NoError(t, act.Validate())

	resp, err = act.Send(ctx)
	require.NoError(t, err)
	assert.Len(t, resp.Results(), 3)

	for _, l := range fake.Lights() {
		assert.True(t, bool(l.Power))
		assert.Equal(t, 1.0, l.Brightness, "brightness was ignored")
	}

	_, err = client.Scenes().Activate("00000000-0000-0000-0000-000000000000").Send(ctx)
	kind, _ := lifx.KindOf(err)
	assert.Equal(t, lifx.KindNotFound, kind)
}

func TestSendAll(t *testing.T) {
	fake, client := newFake(t)
	fake.Queue(serverError("first one fails"))

	reqs := []lifx.Sender{
		client.Select(lifx.ID("d073d5000001")).SetState().Power(true),
		client.Select(lifx.ID("d073d5000002")).SetState().Power(true),
		client.Select(lifx.ID("d073d5000003")).SetState().Power(true),
		client.Select(lifx.Label("missing")).List(),
	}

	outcomes := lifx.SendAll(context.Background(), 1, reqs...)
	require.Len(t, outcomes, len(reqs))

	for i, o := range outcomes {
		assert.Equal(t, reqs[i].Request().Path(), o.Request.Path(), "outcomes keep request order")
	}

	kind, _ := lifx.KindOf(outcomes[0].Err)
	assert.Equal(t, lifx.KindServer, kind)
	assert.NoError(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)
	kind, _ = lifx.KindOf(outcomes[3].Err)
	assert.Equal(t, lifx.KindNotFound, kind)

	assert.Len(t, fake.Requests(), 4)
}
