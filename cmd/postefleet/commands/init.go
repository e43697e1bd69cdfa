package commands

import (
	"github.com/spf13/cobra"

	"postefleet/cmd/postefleet/handlers"
)

// Init returns the command running the interactive configuration wizard.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a fleet configuration interactively",
		Long: `Create a fleet configuration file interactively.

The wizard asks for the essential settings (image, instance count, base
port, parallelism, data root) and writes a fully expanded YAML file that
can be edited afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Init(outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "postefleet.yaml", "Where to write the configuration")

	return cmd
}
