package commands

import (
	"github.com/spf13/cobra"

	"postefleet/cmd/postefleet/handlers"
)

// Archive returns the command uploading run artifacts to object storage.
func Archive() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "archive <run-id> <dir>",
		Short: "Upload run artifacts to the configured object store",
		Long: `Upload every file under a directory to the configured S3-compatible
bucket, keyed by run ID. Requires the archive section of the config.

Examples:
  postefleet archive bench-2026-08-27 ./configs`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Archive(cmd.Context(), configPath, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")

	return cmd
}
