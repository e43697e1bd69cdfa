package handlers

import (
	"context"
	"fmt"
	"os"

	"postefleet/internal/config"
	"postefleet/internal/fleet"
	"postefleet/internal/golden"
	"postefleet/internal/platform/docker"
	"postefleet/internal/poste"
)

// readinessWaiter interface for testing - matches poste.Waiter.
type readinessWaiter interface {
	WaitReady(ctx context.Context, containerName string, webPort int) error
}

// Factory function variables for start - can be replaced in tests.
var (
	// newWaiter builds the readiness poller.
	newWaiter = func(rt docker.Runtime) readinessWaiter {
		return poste.NewWaiter(rt)
	}

	// seedDataDir seeds a data directory from the golden image.
	seedDataDir = golden.SeedDataDir
)

// StartFlags tune a single-instance start.
type StartFlags struct {
	// Golden clones from the golden image instead of cold-starting.
	Golden bool

	// NoWait skips the readiness wait and admin account setup.
	NoWait bool
}

// Start brings up one fleet instance: container start, readiness wait,
// and admin account setup on its mail domain.
func Start(ctx context.Context, configPath string, index int, flags StartFlags) error {
	ctrl, err := controller(configPath)
	if err != nil {
		return err
	}

	opts, err := startOptions(ctx, ctrl, index, flags.Golden)
	if err != nil {
		return err
	}
	if _, err := ctrl.Start(ctx, index, opts); err != nil {
		return err
	}
	if flags.NoWait {
		return nil
	}
	return finishInstance(ctx, ctrl, index)
}

// startOptions resolves the image and, for golden clones, seeds the
// instance data directory on first use.
func startOptions(ctx context.Context, ctrl *fleet.Controller, index int, useGolden bool) (fleet.StartOptions, error) {
	if !useGolden {
		return fleet.StartOptions{}, nil
	}

	cfg := ctrl.Config()
	exists, err := ctrl.Runtime().ImageExists(ctx, cfg.GoldenImage)
	if err != nil {
		return fleet.StartOptions{}, fmt.Errorf("failed to check for golden image: %w", err)
	}
	if !exists {
		return fleet.StartOptions{}, fmt.Errorf("golden image %s not found; run 'postefleet build_golden' first", cfg.GoldenImage)
	}

	if err := seedIfEmpty(ctx, ctrl, fleet.Derive(cfg, index)); err != nil {
		return fleet.StartOptions{}, err
	}
	return fleet.StartOptions{Image: cfg.GoldenImage}, nil
}

// seedIfEmpty populates the instance data directory from the golden
// image unless it already holds state from a previous run.
func seedIfEmpty(ctx context.Context, ctrl *fleet.Controller, id fleet.Identity) error {
	entries, err := os.ReadDir(id.DataDir)
	if err == nil && len(entries) > 0 {
		return nil
	}
	if err := os.MkdirAll(id.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", id.DataDir, err)
	}
	return seedDataDir(ctx, ctrl.Runtime(), ctrl.Config().GoldenImage, id.DataDir)
}

// finishInstance waits for readiness and ensures the instance's mail
// domain and admin account exist.
func finishInstance(ctx context.Context, ctrl *fleet.Controller, index int) error {
	cfg := ctrl.Config()
	rt := ctrl.Runtime()
	id := fleet.Derive(cfg, index)

	waiter := newWaiter(rt)
	if err := waiter.WaitReady(ctx, id.ContainerName, id.WebPort); err != nil {
		return err
	}
	return ensureAdmin(ctx, rt, cfg, id)
}

// ensureAdmin creates the instance's mail domain and admin account. Both
// operations tolerate already-existing state.
func ensureAdmin(ctx context.Context, rt docker.Runtime, cfg *config.Config, id fleet.Identity) error {
	console := poste.NewConsole(rt, id.ContainerName)
	if err := console.DomainCreate(ctx, id.Domain); err != nil {
		return err
	}

	admin := poste.RewriteAddress(cfg.AdminAddress, id.Domain)
	if err := console.EmailCreate(ctx, admin, cfg.AdminPassword, "Administrator"); err != nil {
		return err
	}
	return console.EmailAdmin(ctx, admin)
}
