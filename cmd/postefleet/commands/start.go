package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"postefleet/cmd/postefleet/handlers"
)

// Start returns the command for starting a single fleet instance.
//
// The instance index determines the container name, data directory and
// host ports. Starting a running instance is a no-op; a stale container
// with the same name is replaced.
func Start() *cobra.Command {
	var configPath string
	var flags handlers.StartFlags

	cmd := &cobra.Command{
		Use:   "start <index>",
		Short: "Start one fleet instance",
		Long: `Start one fleet instance.

The zero-based index selects the container name, host ports and data
directory. After the container is up, the command waits until the web
stack responds and the admin account exists.

Examples:
  # Start instance 0
  postefleet start 0

  # Start instance 3 from the golden image
  postefleet start 3 --golden

  # Start without waiting for readiness
  postefleet start 0 --no-wait`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 0 {
				return usageErrorf(cmd, "index must be a non-negative integer, got %q", args[0])
			}
			return handlers.Start(cmd.Context(), configPath, index, flags)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")
	cmd.Flags().BoolVar(&flags.Golden, "golden", false, "Clone from the golden image instead of cold-starting")
	cmd.Flags().BoolVar(&flags.NoWait, "no-wait", false, "Do not wait for readiness")

	return cmd
}
