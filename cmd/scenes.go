package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jake-scott/lifx-cloud/pkg/lifx"
)

var _scenesCmdOpts struct {
	duration   time.Duration
	ignore     []string
	brightness float64
	power      string
}

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List and activate scenes",
}

var scenesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenes on the account",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return doScenesList()
	},
}

var scenesActivateCmd = &cobra.Command{
	Use:   "activate scene-uuid",
	Short: "Activate a scene",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doScenesActivate(cmd, args[0])
	},
}

func init() {
	scenesActivateCmd.Flags().DurationVar(&_scenesCmdOpts.duration, "duration", 0, "transition time, eg. 2s")
	scenesActivateCmd.Flags().StringSliceVar(&_scenesCmdOpts.ignore, "ignore", nil, "state properties the scene should not change, eg. power,brightness")
	scenesActivateCmd.Flags().Float64Var(&_scenesCmdOpts.brightness, "brightness", 0, "override the brightness of every light in the scene")
	scenesActivateCmd.Flags().StringVar(&_scenesCmdOpts.power, "power", "", "override the power of every light in the scene")

	scenesCmd.AddCommand(scenesListCmd, scenesActivateCmd)
	rootCmd.AddCommand(scenesCmd)
}

func doScenesList() error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	resp, err := client.Scenes().List().Attempts(attempts()).Send(ctx)
	if err != nil {
		return err
	}

	scenes, err := resp.Scenes()
	if err != nil {
		return err
	}

	for _, sc := range scenes {
		fmt.Printf("%-36s  %-24s %d lights\n", sc.UUID, sc.Name, len(sc.States))
	}

	return nil
}

func doScenesActivate(cmd *cobra.Command, id string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	b := client.Scenes().Activate(id).Attempts(attempts())

	flags := cmd.Flags()
	if flags.Changed("duration") {
		b = b.Transition(_scenesCmdOpts.duration)
	}
	if len(_scenesCmdOpts.ignore) > 0 {
		b = b.Ignore(_scenesCmdOpts.ignore...)
	}
	if flags.Changed("brightness") || flags.Changed("power") {
		overrides := lifx.NewState()
		if flags.Changed("brightness") {
			overrides = overrides.WithBrightness(_scenesCmdOpts.brightness)
		}
		if flags.Changed("power") {
			on, err := parsePower(_scenesCmdOpts.power)
			if err != nil {
				return err
			}
			overrides = overrides.WithPower(on)
		}
		b = b.Overrides(overrides)
	}

	if err := b.Validate(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	resp, err := b.Send(ctx)
	if err != nil {
		return err
	}

	printResults(resp)
	return nil
}
