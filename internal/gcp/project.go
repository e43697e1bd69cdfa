package gcp

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

// Defaults for project provisioning. The account email granted the role
// is derived from the project ID when not overridden.
const (
	DefaultService       = "gmail.googleapis.com"
	DefaultRole          = "roles/editor"
	DefaultAccountDomain = "mcp.com"
)

// ProjectOptions tune a provisioning run.
type ProjectOptions struct {
	// SkipCreate fails instead of creating when the project is missing.
	SkipCreate bool

	// Service is the API enabled on the project.
	Service string

	// Role granted to the derived account.
	Role string

	// Member overrides the derived account email.
	Member string
}

func (o *ProjectOptions) applyDefaults() {
	if o.Service == "" {
		o.Service = DefaultService
	}
	if o.Role == "" {
		o.Role = DefaultRole
	}
}

// DeriveAccountEmail returns the account email a project's role grant
// targets when no explicit member is given.
func DeriveAccountEmail(projectID string) string {
	return fmt.Sprintf("%s@%s", projectID, DefaultAccountDomain)
}

// ProjectProvisioner runs the linear project setup sequence: find or
// create the project, link the first open billing account, enable one
// API, grant one role. Every step checks before it changes.
type ProjectProvisioner struct {
	run Runner
}

// NewProjectProvisioner returns a provisioner over the given runner.
func NewProjectProvisioner(run Runner) *ProjectProvisioner {
	return &ProjectProvisioner{run: run}
}

// Provision sets up one project end to end.
func (p *ProjectProvisioner) Provision(ctx context.Context, projectID string, opts ProjectOptions) error {
	opts.applyDefaults()

	if err := p.ensureProject(ctx, projectID, opts.SkipCreate); err != nil {
		return err
	}
	if err := p.linkBilling(ctx, projectID); err != nil {
		return err
	}

	log.Printf("Enabling %s on %s", opts.Service, projectID)
	if _, err := p.run.Run(ctx, "services", "enable", opts.Service, "--project="+projectID); err != nil {
		return fmt.Errorf("failed to enable %s: %w", opts.Service, err)
	}

	member := opts.Member
	if member == "" {
		member = DeriveAccountEmail(projectID)
	}
	log.Printf("Granting %s to %s on %s", opts.Role, member, projectID)
	_, err := p.run.Run(ctx, "projects", "add-iam-policy-binding", projectID,
		"--member=user:"+member, "--role="+opts.Role)
	if err != nil {
		return fmt.Errorf("failed to grant %s to %s: %w", opts.Role, member, err)
	}

	log.Printf("Project %s provisioned", projectID)
	return nil
}

// ensureProject makes the project exist. Describe decides; create only
// runs when allowed and needed.
func (p *ProjectProvisioner) ensureProject(ctx context.Context, projectID string, skipCreate bool) error {
	_, err := p.run.Run(ctx, "projects", "describe", projectID, "--format=value(projectId)")
	if err == nil {
		log.Printf("Project %s already exists", projectID)
		return nil
	}
	if skipCreate {
		return fmt.Errorf("project %s not found and creation is disabled: %w", projectID, err)
	}

	log.Printf("Creating project %s", projectID)
	if _, err := p.run.Run(ctx, "projects", "create", projectID); err != nil {
		return fmt.Errorf("failed to create project %s: %w", projectID, err)
	}
	return nil
}

// linkBilling attaches the first open billing account. There is no
// selection policy: multi-account setups must pre-link manually.
func (p *ProjectProvisioner) linkBilling(ctx context.Context, projectID string) error {
	output, err := p.run.Run(ctx, "billing", "accounts", "list",
		"--filter=open=true", "--format=value(name)")
	if err != nil {
		return fmt.Errorf("failed to list billing accounts: %w", err)
	}
	account := firstLine(output)
	if account == "" {
		return fmt.Errorf("no open billing account available")
	}

	log.Printf("Linking billing account %s to %s", account, projectID)
	_, err = p.run.Run(ctx, "billing", "projects", "link", projectID,
		"--billing-account="+account)
	if err != nil {
		return fmt.Errorf("failed to link billing account: %w", err)
	}
	return nil
}

// ProvisionList provisions every project named in a list file, one
// non-empty non-comment line per project. Failures are collected so one
// broken project does not abort the batch.
func (p *ProjectProvisioner) ProvisionList(ctx context.Context, path string, opts ProjectOptions) error {
	// #nosec G304
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open project list %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var failed []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		projectID := strings.TrimSpace(scanner.Text())
		if projectID == "" || strings.HasPrefix(projectID, "#") {
			continue
		}
		if err := p.Provision(ctx, projectID, opts); err != nil {
			log.Printf("Project %s failed: %v", projectID, err)
			failed = append(failed, projectID)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read project list %s: %w", path, err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d project(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}
