package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jake-scott/lifx-cloud/pkg/lifx"
)

var _lightsCmdOpts struct {
	zones  string
	random bool

	power      string
	color      string
	fromColor  string
	brightness float64
	infrared   float64
	duration   time.Duration

	hue        int16
	saturation float64
	kelvin     int16

	period  time.Duration
	cycles  float64
	persist bool
	powerOn bool
	peak    float64

	states  []string
	reverse bool
}

var lightsCmd = &cobra.Command{
	Use:   "lights",
	Short: "List and control lights",
}

var lightsListCmd = &cobra.Command{
	Use:   "list [selector]",
	Short: "List the lights matched by a selector (default all)",
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		sel := "all"
		if len(args) == 1 {
			sel = args[0]
		}
		return doLightsList(sel)
	},
}

var lightsSetCmd = &cobra.Command{
	Use:   "set selector...",
	Short: "Set the state of lights",
	Args:  cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doLightsSet(cmd, args)
	},
}

var lightsDeltaCmd = &cobra.Command{
	Use:   "delta selector...",
	Short: "Adjust the state of lights relative to their current state",
	Args:  cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doLightsDelta(cmd, args)
	},
}

var lightsToggleCmd = &cobra.Command{
	Use:   "toggle selector...",
	Short: "Toggle the power of lights",
	Args:  cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doLightsToggle(cmd, args)
	},
}

var lightsBreatheCmd = &cobra.Command{
	Use:   "breathe color selector...",
	Short: "Slowly fade lights between two colors",
	Args:  cobra.MinimumNArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doLightsEffect(cmd, "breathe", args[0], args[1:])
	},
}

var lightsPulseCmd = &cobra.Command{
	Use:   "pulse color selector...",
	Short: "Quickly flash lights between two colors",
	Args:  cobra.MinimumNArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doLightsEffect(cmd, "pulse", args[0], args[1:])
	},
}

var lightsCycleCmd = &cobra.Command{
	Use:   "cycle selector...",
	Short: "Move lights to the next of a list of states",
	Long: `Move lights to the next of a list of states.  States are given with
--state, as semicolon separated key=value pairs, eg.

  lifx-cloud lights cycle group:Kitchen --state 'power=on;color=red' --state 'color=rgb:0,0,255;brightness=0.5'`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doLightsCycle(args)
	},
}

func init() {
	lightsCmd.PersistentFlags().StringVar(&_lightsCmdOpts.zones, "zones", "", "restrict to zones of multizone lights, eg. 0-3,7")
	lightsCmd.PersistentFlags().BoolVar(&_lightsCmdOpts.random, "random", false, "pick one matching light at random")

	lightsSetCmd.Flags().StringVar(&_lightsCmdOpts.power, "power", "", "on or off")
	lightsSetCmd.Flags().StringVar(&_lightsCmdOpts.color, "color", "", "color, eg. red, hue:120, kelvin:2700, #ff8800")
	lightsSetCmd.Flags().Float64Var(&_lightsCmdOpts.brightness, "brightness", 0, "brightness 0-1, overrides the color")
	lightsSetCmd.Flags().Float64Var(&_lightsCmdOpts.infrared, "infrared", 0, "infrared level 0-1")
	lightsSetCmd.Flags().DurationVar(&_lightsCmdOpts.duration, "duration", 0, "transition time, eg. 2s")

	lightsDeltaCmd.Flags().StringVar(&_lightsCmdOpts.power, "power", "", "on or off")
	lightsDeltaCmd.Flags().Int16Var(&_lightsCmdOpts.hue, "hue", 0, "hue change in degrees")
	lightsDeltaCmd.Flags().Float64Var(&_lightsCmdOpts.saturation, "saturation", 0, "saturation change")
	lightsDeltaCmd.Flags().Float64Var(&_lightsCmdOpts.brightness, "brightness", 0, "brightness change")
	lightsDeltaCmd.Flags().Int16Var(&_lightsCmdOpts.kelvin, "kelvin", 0, "temperature change")
	lightsDeltaCmd.Flags().Float64Var(&_lightsCmdOpts.infrared, "infrared", 0, "infrared change")
	lightsDeltaCmd.Flags().DurationVar(&_lightsCmdOpts.duration, "duration", 0, "transition time, eg. 2s")

	lightsToggleCmd.Flags().DurationVar(&_lightsCmdOpts.duration, "duration", 0, "transition time, eg. 2s")

	for _, c := range []*cobra.Command{lightsBreatheCmd, lightsPulseCmd} {
		c.Flags().StringVar(&_lightsCmdOpts.fromColor, "from", "", "starting color (default the current color)")
		c.Flags().DurationVar(&_lightsCmdOpts.period, "period", time.Second, "time for one cycle")
		c.Flags().Float64Var(&_lightsCmdOpts.cycles, "cycles", 1, "number of cycles")
		c.Flags().BoolVar(&_lightsCmdOpts.persist, "persist", false, "stay on the last color")
		c.Flags().BoolVar(&_lightsCmdOpts.powerOn, "power-on", true, "turn lights on first")
	}
	lightsBreatheCmd.Flags().Float64Var(&_lightsCmdOpts.peak, "peak", 0.5, "where in the cycle the color peaks, 0-1")

	lightsCycleCmd.Flags().StringArrayVar(&_lightsCmdOpts.states, "state", nil, "a state to cycle through (repeat)")
	lightsCycleCmd.Flags().BoolVar(&_lightsCmdOpts.reverse, "reverse", false, "cycle backwards")

	lightsCmd.AddCommand(lightsListCmd, lightsSetCmd, lightsDeltaCmd, lightsToggleCmd, lightsBreatheCmd, lightsPulseCmd, lightsCycleCmd)
	rootCmd.AddCommand(lightsCmd)
}

func targets(args []string) ([]lifx.Select, error) {
	sels := make([]lifx.Select, 0, len(args))
	for _, a := range args {
		sel, err := parseTarget(a, _lightsCmdOpts.zones, _lightsCmdOpts.random)
		if err != nil {
			return nil, errors.Wrapf(err, "selector %q", a)
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

func parsePower(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, errors.Errorf("power must be on or off, not %q", s)
}

func doLightsList(arg string) error {
	sel, err := parseTarget(arg, _lightsCmdOpts.zones, _lightsCmdOpts.random)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	resp, err := client.Select(sel).List().Attempts(attempts()).Send(ctx)
	if err != nil {
		return err
	}

	lights, err := resp.Lights()
	if err != nil {
		return err
	}

	for _, l := range lights {
		product := l.Product.Name
		if p, ok := l.KnownProduct(); ok {
			product = p.Name
		}

		connected := "connected"
		if !l.Connected {
			connected = "offline"
		}

		fmt.Printf("%-14s %-20s %-3s %4.0f%%  %-16s %-16s %-20s %s\n",
			l.ID, l.Label, l.Power, l.Brightness*100, l.Group.Name, l.Location.Name, product, connected)
	}

	return nil
}

// parseState turns "power=on;color=red;brightness=0.5;duration=2s" into a State
func parseState(spec string) (lifx.State, error) {
	st := lifx.NewState()

	for _, kv := range strings.Split(spec, ";") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return st, errors.Errorf("expected key=value, got %q", kv)
		}

		key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		switch key {
		case "power":
			on, err := parsePower(value)
			if err != nil {
				return st, err
			}
			st = st.WithPower(on)
		case "color":
			c, err := lifx.ParseColor(value)
			if err != nil {
				return st, err
			}
			st = st.WithColor(c)
		case "brightness", "infrared":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return st, errors.Wrapf(err, "bad %s %q", key, value)
			}
			if key == "brightness" {
				st = st.WithBrightness(f)
			} else {
				st = st.WithInfrared(f)
			}
		case "duration":
			d, err := time.ParseDuration(value)
			if err != nil {
				return st, errors.Wrapf(err, "bad duration %q", value)
			}
			st = st.WithTransition(d)
		default:
			return st, errors.Errorf("unknown state key %q", key)
		}
	}

	return st, st.Validate()
}

func doLightsSet(cmd *cobra.Command, args []string) error {
	sels, err := targets(args)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var reqs []lifx.Sender
	for _, sel := range sels {
		b := client.Select(sel).SetState().Attempts(attempts())

		if flags.Changed("power") {
			on, err := parsePower(_lightsCmdOpts.power)
			if err != nil {
				return err
			}
			b = b.Power(on)
		}
		if flags.Changed("color") {
			c, err := lifx.ParseColor(_lightsCmdOpts.color)
			if err != nil {
				return err
			}
			b = b.Color(c)
		}
		if flags.Changed("brightness") {
			b = b.Brightness(_lightsCmdOpts.brightness)
		}
		if flags.Changed("infrared") {
			b = b.Infrared(_lightsCmdOpts.infrared)
		}
		if flags.Changed("duration") {
			b = b.Transition(_lightsCmdOpts.duration)
		}

		if err := b.Validate(); err != nil {
			return err
		}
		reqs = append(reqs, b)
	}

	ctx, cancel := commandContext()
	defer cancel()

	return sendAll(ctx, reqs)
}

func doLightsDelta(cmd *cobra.Command, args []string) error {
	sels, err := targets(args)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var reqs []lifx.Sender
	for _, sel := range sels {
		b := client.Select(sel).ChangeState().Attempts(attempts())

		if flags.Changed("power") {
			on, err := parsePower(_lightsCmdOpts.power)
			if err != nil {
				return err
			}
			b = b.Power(on)
		}
		if flags.Changed("hue") {
			b = b.Hue(_lightsCmdOpts.hue)
		}
		if flags.Changed("saturation") {
			b = b.Saturation(_lightsCmdOpts.saturation)
		}
		if flags.Changed("brightness") {
			b = b.Brightness(_lightsCmdOpts.brightness)
		}
		if flags.Changed("kelvin") {
			b = b.Kelvin(_lightsCmdOpts.kelvin)
		}
		if flags.Changed("infrared") {
			b = b.Infrared(_lightsCmdOpts.infrared)
		}
		if flags.Changed("duration") {
			b = b.Transition(_lightsCmdOpts.duration)
		}

		reqs = append(reqs, b)
	}

	ctx, cancel := commandContext()
	defer cancel()

	return sendAll(ctx, reqs)
}

func doLightsToggle(cmd *cobra.Command, args []string) error {
	sels, err := targets(args)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	var reqs []lifx.Sender
	for _, sel := range sels {
		b := client.Select(sel).Toggle().Attempts(attempts())
		if cmd.Flags().Changed("duration") {
			b = b.Transition(_lightsCmdOpts.duration)
		}
		reqs = append(reqs, b)
	}

	ctx, cancel := commandContext()
	defer cancel()

	return sendAll(ctx, reqs)
}

func doLightsEffect(cmd *cobra.Command, effect string, colorText string, args []string) error {
	color, err := lifx.ParseColor(colorText)
	if err != nil {
		return err
	}
	if err := color.Validate(); err != nil {
		return err
	}

	var from *lifx.Color
	if cmd.Flags().Changed("from") {
		c, err := lifx.ParseColor(_lightsCmdOpts.fromColor)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		from = &c
	}

	sels, err := targets(args)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	o := _lightsCmdOpts
	var reqs []lifx.Sender
	for _, sel := range sels {
		if effect == "breathe" {
			b := client.Select(sel).Breathe(color).
				Period(o.period).Cycles(o.cycles).Persist(o.persist).PowerOn(o.powerOn).Peak(o.peak).
				Attempts(attempts())
			if from != nil {
				b = b.From(*from)
			}
			reqs = append(reqs, b)
			continue
		}

		b := client.Select(sel).Pulse(color).
			Period(o.period).Cycles(o.cycles).Persist(o.persist).PowerOn(o.powerOn).
			Attempts(attempts())
		if from != nil {
			b = b.From(*from)
		}
		reqs = append(reqs, b)
	}

	ctx, cancel := commandContext()
	defer cancel()

	return sendAll(ctx, reqs)
}

func doLightsCycle(args []string) error {
	if len(_lightsCmdOpts.states) < 2 {
		return errors.New("at least two --state values are needed")
	}

	states := make([]lifx.State, 0, len(_lightsCmdOpts.states))
	for _, spec := range _lightsCmdOpts.states {
		st, err := parseState(spec)
		if err != nil {
			return errors.Wrapf(err, "state %q", spec)
		}
		states = append(states, st)
	}

	sels, err := targets(args)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	var reqs []lifx.Sender
	for _, sel := range sels {
		b := client.Select(sel).Cycle().Attempts(attempts())
		for _, st := range states {
			b = b.Add(st)
		}
		if _lightsCmdOpts.reverse {
			b = b.Reverse()
		}
		reqs = append(reqs, b)
	}

	ctx, cancel := commandContext()
	defer cancel()

	return sendAll(ctx, reqs)
}
