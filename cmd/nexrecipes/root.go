package main

import (
	"time"

	"github.com/aatumaykin/nexrecipes/internal/constants"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envPath    string
	logLevel   string
	timeout    time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   constants.AppName,
	Short: "Scaffold agents and teams from recipes and keep their cron jobs in sync",
	Long: `nexrecipes scaffolds agent and team workspaces from recipe markdown files
and reconciles the cron jobs recipes declare with the gateway scheduler.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", constants.DefaultConfigPath, "path to config file")
	flags.StringVar(&envPath, "env", constants.DefaultEnvPath, "path to .env file (optional)")
	flags.StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	flags.DurationVar(&timeout, "timeout", 0, "overall deadline for the command (0 disables)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(scaffoldCmd)
	rootCmd.AddCommand(scaffoldTeamCmd)
	rootCmd.AddCommand(cronCmd)
}
