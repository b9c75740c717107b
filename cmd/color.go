package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jake-scott/lifx-cloud/pkg/lifx"
)

var _colorCheckRemote bool

var colorCmd = &cobra.Command{
	Use:   "color",
	Short: "Work with color strings",
}

var colorCheckCmd = &cobra.Command{
	Use:   "check color",
	Short: "Parse and validate a color string",
	Long: `Parse and validate a color string locally.  With --remote the API is
asked how it interprets the color as well.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doColorCheck(args[0])
	},
}

func init() {
	colorCheckCmd.Flags().BoolVar(&_colorCheckRemote, "remote", false, "also check the color with the API")

	colorCmd.AddCommand(colorCheckCmd)
	rootCmd.AddCommand(colorCmd)
}

func optional(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *f)
}

func doColorCheck(text string) error {
	color, err := lifx.ParseColor(text)
	if err != nil {
		return err
	}
	if err := color.Validate(); err != nil {
		return err
	}

	fmt.Printf("%s: ok\n", color)

	if !_colorCheckRemote {
		return nil
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	resp, err := client.ValidateColor(color).Attempts(attempts()).Send(ctx)
	if err != nil {
		return err
	}

	info, err := resp.ColorInfo()
	if err != nil {
		return err
	}

	kelvin := "-"
	if info.Kelvin != nil {
		kelvin = fmt.Sprintf("%d", *info.Kelvin)
	}
	fmt.Printf("hue %s  saturation %s  brightness %s  kelvin %s\n",
		optional(info.Hue), optional(info.Saturation), optional(info.Brightness), kelvin)

	return nil
}
