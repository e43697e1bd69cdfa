package commands

import (
	"github.com/spf13/cobra"

	"postefleet/cmd/postefleet/handlers"
)

// BuildGolden returns the command building the pre-provisioned image.
func BuildGolden() *cobra.Command {
	var configPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "build_golden",
		Short: "Build the pre-provisioned golden image",
		Long: `Build the pre-provisioned golden image.

A temporary build container is started without a host data mount,
provisioned with every fleet domain and the configured user list, and
committed as the golden image tag. Instances started with --golden then
clone that state instead of provisioning from scratch.

The build is skipped when the golden tag already exists; use --force to
rebuild.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.BuildGolden(cmd.Context(), configPath, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when the golden image exists")

	return cmd
}
