package handlers

import (
	"context"

	"postefleet/internal/fleet"
	"postefleet/internal/golden"
	"postefleet/internal/poste"
)

// goldenBuilder interface for testing - matches golden.Builder.
type goldenBuilder interface {
	Build(ctx context.Context, opts golden.BuildOptions) error
}

// Factory function variables for build_golden - can be replaced in
// tests.
var (
	newBuilder = func(ctrl *fleet.Controller) goldenBuilder {
		return golden.NewBuilder(ctrl)
	}
	loadUsers = poste.LoadUsers
)

// BuildGolden builds the pre-provisioned golden image: every fleet
// domain plus the configured user list, baked into one committed tag.
func BuildGolden(ctx context.Context, configPath string, force bool) error {
	ctrl, err := controller(configPath)
	if err != nil {
		return err
	}
	cfg := ctrl.Config()

	users, err := goldenUsers(cfg.UsersFile, cfg.AdminAddress, cfg.AdminPassword)
	if err != nil {
		return err
	}

	// Every fleet domain goes into the image so any clone finds its own.
	domains := make([]string, 0, cfg.Instances)
	for index := 0; index < cfg.Instances; index++ {
		domains = append(domains, cfg.Domain(index))
	}

	return newBuilder(ctrl).Build(ctx, golden.BuildOptions{
		Domains: domains,
		Users:   users,
		Force:   force,
	})
}

// goldenUsers loads the configured user list, falling back to just the
// admin account when no user file is configured.
func goldenUsers(usersFile, adminAddress, adminPassword string) ([]poste.User, error) {
	if usersFile == "" {
		return []poste.User{{
			Email:    adminAddress,
			Password: adminPassword,
			FullName: "Administrator",
		}}, nil
	}
	return loadUsers(usersFile)
}
