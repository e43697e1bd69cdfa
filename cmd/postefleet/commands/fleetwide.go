package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"postefleet/cmd/postefleet/handlers"
)

// usageErrorf prints the command usage and returns the error so the CLI
// exits non-zero.
func usageErrorf(cmd *cobra.Command, format string, args ...any) error {
	_ = cmd.Usage()
	return fmt.Errorf(format, args...)
}

// StartAll returns the command bringing up the whole configured fleet.
func StartAll() *cobra.Command {
	var configPath string
	var golden bool

	cmd := &cobra.Command{
		Use:   "start_all",
		Short: "Start all configured instances",
		Long: `Start all configured instances with bounded parallelism.

At most max_parallel instances are started concurrently. Per-instance
failures are counted and reported at the end; they do not abort the
remaining starts.

Examples:
  # Cold-start the configured fleet
  postefleet start_all

  # Clone every instance from the golden image
  postefleet start_all --golden`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.StartAll(cmd.Context(), configPath, golden)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")
	cmd.Flags().BoolVar(&golden, "golden", false, "Clone every instance from the golden image")

	return cmd
}

// StopAll returns the command tearing down the whole configured fleet.
func StopAll() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stop_all",
		Short: "Stop all configured instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.StopAll(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")

	return cmd
}

// Status returns the command listing running fleet instances.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show running fleet instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")

	return cmd
}
