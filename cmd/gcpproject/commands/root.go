// Package commands defines the gcpproject CLI. Execution is delegated
// to the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"postefleet/cmd/gcpproject/handlers"
)

// Root returns the root command for the gcpproject CLI.
func Root() *cobra.Command {
	var flags handlers.ProvisionFlags

	cmd := &cobra.Command{
		Use:   "gcpproject [--skip-create] <project-or-list-file>",
		Short: "Provision Google Cloud projects for benchmark runs",
		Long: `Provision a Google Cloud project: find or create it, link the first
open billing account, enable the required API and grant a role to the
derived account email.

The positional argument is either a project ID or, with --from-file, a
text file listing one project ID per line (blank lines and # comments
are skipped).

Examples:
  # Provision one project
  gcpproject bench-2026

  # Fail instead of creating when the project is missing
  gcpproject --skip-create bench-2026

  # Provision every project in a list
  gcpproject --from-file projects.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Provision(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.SkipCreate, "skip-create", false, "Fail instead of creating a missing project")
	cmd.Flags().BoolVar(&flags.FromFile, "from-file", false, "Treat the argument as a project list file")
	cmd.Flags().StringVar(&flags.Service, "service", "", "API service to enable (default: gmail.googleapis.com)")
	cmd.Flags().StringVar(&flags.Role, "role", "", "IAM role to grant (default: roles/editor)")
	cmd.Flags().StringVar(&flags.Member, "member", "", "Account email to grant the role to (default: derived from the project ID)")

	return cmd
}
