package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dicomslicesto3d/pkg/config"
	"dicomslicesto3d/pkg/session"
)

var (
	verbose    bool
	configPath string

	cfg *config.Config
)

// rootCmd runs the interactive session when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dicomslicesto3d",
	Short: "Reconstruct DICOM slice directories into volumes and process 2D images",
	Long: `dicomslicesto3d stacks a directory of single-slice DICOM files into a 3D
volume ordered by slice location, extracts patient information and
orthogonal views, translates slices and runs a threshold, opening and
annotation chain on PNG/JPEG images.

Without a subcommand it starts the interactive menu.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if verbose || cfg.Output.Verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		s := session.New(cfg, nil, slog.Default())
		newMenu(s, cmd.InOrStdin(), cmd.OutOrStdout()).run()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
}
