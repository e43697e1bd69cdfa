// Package commands defines the fleetvm CLI commands. Execution is
// delegated to the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"postefleet/cmd/fleetvm/handlers"
)

// Root returns the root command for the fleetvm CLI.
func Root() *cobra.Command {
	var opts handlers.VMOptions

	cmd := &cobra.Command{
		Use:   "fleetvm",
		Short: "Manage the Google Cloud VM hosting a benchmark fleet",
	}

	cmd.PersistentFlags().StringVar(&opts.Project, "project", "", "Google Cloud project (default: gcloud default project)")
	cmd.PersistentFlags().StringVar(&opts.Zone, "zone", "", "Compute zone (default: us-central1-a)")
	cmd.PersistentFlags().StringVar(&opts.Name, "name", "fleet-host", "VM instance name")

	cmd.AddCommand(create(&opts))
	cmd.AddCommand(del(&opts))
	cmd.AddCommand(ssh(&opts))
	cmd.AddCommand(info(&opts))
	cmd.AddCommand(firewall(&opts))
	cmd.AddCommand(resize(&opts))

	return cmd
}

func create(opts *handlers.VMOptions) *cobra.Command {
	var machineType, diskSize, keyDir string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the fleet VM with a generated SSH key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), *opts, machineType, diskSize, keyDir)
		},
	}

	cmd.Flags().StringVar(&machineType, "machine-type", "", "Machine type (default: e2-standard-4)")
	cmd.Flags().StringVar(&diskSize, "disk-size", "", "Boot disk size (default: 100GB)")
	cmd.Flags().StringVar(&keyDir, "key-dir", ".fleetvm", "Directory for the generated SSH key pair")

	return cmd
}

func del(opts *handlers.VMOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the fleet VM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Delete(cmd.Context(), *opts)
		},
	}
}

func ssh(opts *handlers.VMOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ssh",
		Short: "Open an interactive shell on the fleet VM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SSH(cmd.Context(), *opts)
		},
	}
}

func info(opts *handlers.VMOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show name, status, machine type and external IP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Info(cmd.Context(), *opts)
		},
	}
}

func firewall(opts *handlers.VMOptions) *cobra.Command {
	var ports []int

	cmd := &cobra.Command{
		Use:   "firewall",
		Short: "Open the fleet's mail and web ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Firewall(cmd.Context(), *opts, ports)
		},
	}

	cmd.Flags().IntSliceVar(&ports, "ports", []int{25, 80, 143, 587}, "TCP ports to open")

	return cmd
}

func resize(opts *handlers.VMOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resize <machine-type>",
		Short: "Change the VM machine type (stops and restarts it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Resize(cmd.Context(), *opts, args[0])
		},
	}
	return cmd
}
