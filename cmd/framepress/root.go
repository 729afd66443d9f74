package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"framepress/internal/config"
	"framepress/internal/services"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "framepress",
		Short:         "Batch media transcoding orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(&configFlag))
	rootCmd.AddCommand(newPlanCommand(&configFlag))
	rootCmd.AddCommand(newDepsCommand(&configFlag))
	rootCmd.AddCommand(newConfigCommand(&configFlag))

	return rootCmd
}

// loadConfig resolves and validates the configuration for a subcommand.
func loadConfig(configFlag *string) (*config.Config, error) {
	path := ""
	if configFlag != nil {
		path = *configFlag
	}
	cfg, source, found, err := config.Load(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "load", "", err)
	}
	if path != "" && !found {
		return nil, services.Wrap(services.ErrConfiguration, "config", "load",
			fmt.Sprintf("config file not found at %s", source), nil)
	}
	return cfg, nil
}
