package cmd

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jake-scott/lifx-cloud/internal/pkg/creds"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored access token",
}

var tokenSaveCmd = &cobra.Command{
	Use:   "save token",
	Short: "Save a personal access token to the token file",
	Long: `Save a personal access token, created at https://cloud.lifx.com/settings,
to the file named by --token-file (lifx.token-file in the config file).`,
	Args: cobra.ExactArgs(1),

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("lifx.token-file")
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return doTokenSave(args[0])
	},
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a fingerprint of the configured token",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCreds()
		if err != nil {
			return err
		}

		fmt.Println(c)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSaveCmd, tokenShowCmd)
	rootCmd.AddCommand(tokenCmd)
}

func doTokenSave(token string) error {
	file, err := homedir.Expand(viper.GetString("lifx.token-file"))
	if err != nil {
		return errors.Wrap(err, "expanding token file name")
	}

	c := creds.New(token)
	if err := c.Save(file); err != nil {
		return err
	}

	fmt.Printf("saved token to %s\n", file)
	return nil
}
