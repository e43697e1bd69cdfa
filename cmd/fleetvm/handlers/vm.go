// Package handlers implements the fleetvm commands over the gcloud
// runner. Collaborators are created through factory variables that
// tests replace.
package handlers

import (
	"context"
	"fmt"
	"log"

	"postefleet/internal/gcp"
	"postefleet/internal/util/prerequisites"
)

// VMOptions are the persistent flags shared by every subcommand.
type VMOptions struct {
	Project string
	Zone    string
	Name    string
}

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	newRunner = func() gcp.Runner {
		return gcp.NewCLIRunner()
	}
	checkCloud = prerequisites.CheckCloud
)

// manager checks prerequisites and builds the VM manager.
func manager(opts VMOptions) (*gcp.VMManager, error) {
	if err := checkCloud().Error(); err != nil {
		return nil, err
	}
	return gcp.NewVMManager(newRunner(), opts.Project, opts.Zone), nil
}

// Create provisions the fleet VM with a generated SSH key.
func Create(ctx context.Context, opts VMOptions, machineType, diskSize, keyDir string) error {
	m, err := manager(opts)
	if err != nil {
		return err
	}
	keyPath, err := m.Create(ctx, opts.Name, gcp.CreateOptions{
		MachineType: machineType,
		DiskSize:    diskSize,
		KeyDir:      keyDir,
	})
	if err != nil {
		return err
	}
	log.Printf("Connect with: ssh -i %s postefleet@<external-ip>", keyPath)
	return nil
}

// Delete removes the fleet VM.
func Delete(ctx context.Context, opts VMOptions) error {
	m, err := manager(opts)
	if err != nil {
		return err
	}
	if err := m.Delete(ctx, opts.Name); err != nil {
		return err
	}
	log.Printf("VM %s deleted", opts.Name)
	return nil
}

// SSH opens an interactive shell on the fleet VM.
func SSH(ctx context.Context, opts VMOptions) error {
	m, err := manager(opts)
	if err != nil {
		return err
	}
	return m.SSH(ctx, opts.Name)
}

// Info prints the VM description.
func Info(ctx context.Context, opts VMOptions) error {
	m, err := manager(opts)
	if err != nil {
		return err
	}
	output, err := m.Info(ctx, opts.Name)
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

// Firewall opens the given TCP ports for the fleet.
func Firewall(ctx context.Context, opts VMOptions, ports []int) error {
	if len(ports) == 0 {
		return fmt.Errorf("no ports given")
	}
	m, err := manager(opts)
	if err != nil {
		return err
	}
	return m.EnsureFirewall(ctx, ports)
}

// Resize changes the VM machine type, cycling the instance.
func Resize(ctx context.Context, opts VMOptions, machineType string) error {
	m, err := manager(opts)
	if err != nil {
		return err
	}
	return m.Resize(ctx, opts.Name, machineType)
}
