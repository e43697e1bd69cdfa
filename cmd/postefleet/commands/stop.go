package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"postefleet/cmd/postefleet/handlers"
)

// Stop returns the command for stopping a single fleet instance.
func Stop() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stop <index>",
		Short: "Stop one fleet instance and delete its data",
		Long: `Stop one fleet instance.

The container is stopped and removed and its host data directory is
deleted. Stopping an instance that is not running is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 0 {
				return usageErrorf(cmd, "index must be a non-negative integer, got %q", args[0])
			}
			return handlers.Stop(cmd.Context(), configPath, index)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")

	return cmd
}
