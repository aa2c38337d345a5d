// Package cmd holds the taskcamp command line
package cmd

import (
	"bitwise74/taskcamp/app"
	"bitwise74/taskcamp/config"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "taskcamp",
	Short:         "Project and task tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, createSuperuserCmd)
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "path to a config file (default ./config.toml)")
	flags.String("log-level", "", "overrides app.log_level")

	viper.BindPFlag("app.log_level", flags.Lookup("log-level"))
}

// Execute runs the command named on the command line
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup reads the config and installs the logger
func setup(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
	}

	cfg, err := config.Setup()
	if err != nil {
		return nil, err
	}

	if err := app.MakeLogger(cfg.App.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}
