package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"postefleet/cmd/postefleet/handlers"
)

// Config returns the command printing the effective configuration.
func Config() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config [index]",
		Short: "Print the effective configuration or one instance's identity",
		Long: `Print the effective configuration as YAML.

With an index argument, print the derived identity of that instance
instead: container name, mail domain, ports and data directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := -1
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 0 {
					return usageErrorf(cmd, "index must be a non-negative integer, got %q", args[0])
				}
				index = parsed
			}
			return handlers.Config(configPath, index)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")

	return cmd
}

// GenerateConfigs returns the command emitting per-instance credential
// files for test clients.
func GenerateConfigs() *cobra.Command {
	var configPath string
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate_configs",
		Short: "Write one credential JSON per running instance",
		Long: `Write one credential JSON file per running instance plus a merged
index file, for consumption by benchmark clients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.GenerateConfigs(cmd.Context(), configPath, outDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")
	cmd.Flags().StringVarP(&outDir, "output", "o", "configs", "Output directory for credential files")

	return cmd
}
