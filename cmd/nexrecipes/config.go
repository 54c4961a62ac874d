package main

import (
	"fmt"

	"github.com/aatumaykin/nexrecipes/internal/config"
	"github.com/aatumaykin/nexrecipes/internal/constants"
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		if err := config.LoadEnvOptional(envPath); err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		if errs := cfg.Validate(); len(errs) > 0 {
			out := cmd.ErrOrStderr()
			fmt.Fprint(out, constants.MsgConfigValidationError)
			for _, e := range errs {
				fmt.Fprintf(out, constants.MsgConfigValidatePrefix, e)
			}
			return fmt.Errorf("%d configuration error(s)", len(errs))
		}

		fmt.Fprintf(cmd.OutOrStdout(), constants.MsgConfigValid, path)
		return nil
	},
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		out, err := a.cfg.Encode()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
