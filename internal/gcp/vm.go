package gcp

import (
	"context"
	"fmt"
	"log"
	"strings"

	"postefleet/internal/keygen"
)

// VM defaults sized for a benchmark fleet host.
const (
	DefaultZone        = "us-central1-a"
	DefaultMachineType = "e2-standard-4"
	DefaultDiskSize    = "100GB"
	DefaultImageFamily = "ubuntu-2204-lts"
	DefaultImageProj   = "ubuntu-os-cloud"

	// firewallRule opens the fleet's mail and web ports.
	firewallRule = "postefleet-mail"

	sshUser = "postefleet"
)

// VMManager drives gcloud compute for the fleet host VM.
type VMManager struct {
	run Runner

	// Project scopes every command; empty falls through to the gcloud
	// default project.
	Project string
	Zone    string
}

// NewVMManager returns a manager for the given project and zone.
func NewVMManager(run Runner, project, zone string) *VMManager {
	if zone == "" {
		zone = DefaultZone
	}
	return &VMManager{run: run, Project: project, Zone: zone}
}

func (m *VMManager) scope(args []string) []string {
	args = append(args, "--zone="+m.Zone)
	if m.Project != "" {
		args = append(args, "--project="+m.Project)
	}
	return args
}

// CreateOptions tune VM creation.
type CreateOptions struct {
	MachineType string
	DiskSize    string

	// KeyDir receives the generated SSH key pair.
	KeyDir string
}

// Create provisions the VM with a freshly generated SSH key injected
// into its metadata. Returns the private key path.
func (m *VMManager) Create(ctx context.Context, name string, opts CreateOptions) (string, error) {
	if opts.MachineType == "" {
		opts.MachineType = DefaultMachineType
	}
	if opts.DiskSize == "" {
		opts.DiskSize = DefaultDiskSize
	}

	pair, err := keygen.GenerateRSAKeyPair(keygen.DefaultBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate SSH key: %w", err)
	}
	keyPath, err := pair.WriteFiles(opts.KeyDir, name+"_rsa")
	if err != nil {
		return "", err
	}

	log.Printf("Creating VM %s (%s, %s) in %s", name, opts.MachineType, opts.DiskSize, m.Zone)
	args := m.scope([]string{
		"compute", "instances", "create", name,
		"--machine-type=" + opts.MachineType,
		"--boot-disk-size=" + opts.DiskSize,
		"--image-family=" + DefaultImageFamily,
		"--image-project=" + DefaultImageProj,
		"--metadata=ssh-keys=" + sshUser + ":" + strings.TrimSpace(string(pair.PublicKey)),
	})
	if _, err := m.run.Run(ctx, args...); err != nil {
		return "", fmt.Errorf("failed to create VM %s: %w", name, err)
	}

	log.Printf("VM %s created, private key at %s", name, keyPath)
	return keyPath, nil
}

// Delete removes the VM without prompting.
func (m *VMManager) Delete(ctx context.Context, name string) error {
	args := m.scope([]string{"compute", "instances", "delete", name, "--quiet"})
	if _, err := m.run.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to delete VM %s: %w", name, err)
	}
	return nil
}

// SSH opens an interactive shell on the VM.
func (m *VMManager) SSH(ctx context.Context, name string) error {
	return m.run.Interactive(ctx, m.scope([]string{"compute", "ssh", sshUser + "@" + name})...)
}

// Info returns the VM's description, formatted by gcloud.
func (m *VMManager) Info(ctx context.Context, name string) (string, error) {
	args := m.scope([]string{
		"compute", "instances", "describe", name,
		"--format=yaml(name,status,machineType,networkInterfaces[0].accessConfigs[0].natIP)",
	})
	output, err := m.run.Run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to describe VM %s: %w", name, err)
	}
	return output, nil
}

// EnsureFirewall opens the fleet's mail and web ports to the world. The
// rule is keyed by name, so re-running is a no-op.
func (m *VMManager) EnsureFirewall(ctx context.Context, ports []int) error {
	if _, err := m.run.Run(ctx, m.firewallArgs("describe", nil)...); err == nil {
		log.Printf("Firewall rule %s already exists", firewallRule)
		return nil
	}

	allows := make([]string, 0, len(ports))
	for _, port := range ports {
		allows = append(allows, fmt.Sprintf("tcp:%d", port))
	}
	log.Printf("Creating firewall rule %s (%s)", firewallRule, strings.Join(allows, ","))
	_, err := m.run.Run(ctx, m.firewallArgs("create", []string{
		"--allow=" + strings.Join(allows, ","),
		"--direction=INGRESS",
	})...)
	if err != nil {
		return fmt.Errorf("failed to create firewall rule: %w", err)
	}
	return nil
}

func (m *VMManager) firewallArgs(verb string, extra []string) []string {
	args := []string{"compute", "firewall-rules", verb, firewallRule}
	args = append(args, extra...)
	if m.Project != "" {
		args = append(args, "--project="+m.Project)
	}
	return args
}

// Resize changes the VM's machine type. The instance must be stopped
// for set-machine-type, so this cycles it.
func (m *VMManager) Resize(ctx context.Context, name, machineType string) error {
	log.Printf("Resizing VM %s to %s", name, machineType)
	steps := [][]string{
		m.scope([]string{"compute", "instances", "stop", name}),
		m.scope([]string{"compute", "instances", "set-machine-type", name, "--machine-type=" + machineType}),
		m.scope([]string{"compute", "instances", "start", name}),
	}
	for _, args := range steps {
		if _, err := m.run.Run(ctx, args...); err != nil {
			return fmt.Errorf("failed to resize VM %s: %w", name, err)
		}
	}
	return nil
}
