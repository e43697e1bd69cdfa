// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated
// to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the postefleet CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postefleet",
		Short: "Orchestrate a fleet of Poste.io mail server containers",
	}

	// Lifecycle commands
	cmd.AddCommand(Init())
	cmd.AddCommand(Start())
	cmd.AddCommand(Stop())
	cmd.AddCommand(StartAll())
	cmd.AddCommand(StopAll())
	cmd.AddCommand(Status())

	// Provisioning commands
	cmd.AddCommand(BuildGolden())
	cmd.AddCommand(Accounts())

	// Output commands
	cmd.AddCommand(Config())
	cmd.AddCommand(GenerateConfigs())
	cmd.AddCommand(Archive())

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
