package commands

import (
	"github.com/spf13/cobra"

	"postefleet/cmd/postefleet/handlers"
)

// Accounts returns the command bulk-provisioning mail accounts.
func Accounts() *cobra.Command {
	var configPath string
	var usersFile string
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Provision mail accounts on all running instances",
		Long: `Provision the configured user list on every running instance.

Each instance receives every user under its own mail domain. The fast
path uploads a batch script that creates all accounts in one process;
when the instance's admin build is incompatible, provisioning falls back
to parallel per-account console calls. A summary JSON with per-domain
account lists and aggregate counts is written at the end.

Examples:
  # Provision using the users_file from the config
  postefleet accounts

  # Provision a specific user list
  postefleet accounts --users bench_users.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Accounts(cmd.Context(), configPath, usersFile, summaryPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: postefleet.yaml)")
	cmd.Flags().StringVar(&usersFile, "users", "", "User source JSON file (default: users_file from config)")
	cmd.Flags().StringVar(&summaryPath, "summary", "accounts_summary.json", "Where to write the run summary")

	return cmd
}
