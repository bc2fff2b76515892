package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dicomslicesto3d/pkg/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a configuration file with the default values",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.CreateDefaultConfigFile(path); err != nil {
			fatal("Failed to write configuration", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Default configuration written to", path)
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
}
