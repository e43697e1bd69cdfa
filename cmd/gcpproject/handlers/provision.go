// Package handlers implements the gcpproject command over the gcloud
// runner. Collaborators are created through factory variables that
// tests replace.
package handlers

import (
	"context"

	"postefleet/internal/gcp"
	"postefleet/internal/util/prerequisites"
)

// ProvisionFlags mirror the CLI flags.
type ProvisionFlags struct {
	SkipCreate bool
	FromFile   bool
	Service    string
	Role       string
	Member     string
}

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	newRunner = func() gcp.Runner {
		return gcp.NewCLIRunner()
	}
	checkCloud = prerequisites.CheckCloud
)

// Provision sets up one project, or every project in a list file.
func Provision(ctx context.Context, target string, flags ProvisionFlags) error {
	if err := checkCloud().Error(); err != nil {
		return err
	}

	p := gcp.NewProjectProvisioner(newRunner())
	opts := gcp.ProjectOptions{
		SkipCreate: flags.SkipCreate,
		Service:    flags.Service,
		Role:       flags.Role,
		Member:     flags.Member,
	}
	if flags.FromFile {
		return p.ProvisionList(ctx, target, opts)
	}
	return p.Provision(ctx, target, opts)
}
