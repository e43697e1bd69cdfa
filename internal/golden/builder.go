// Package golden builds and consumes the pre-provisioned golden image.
// Instead of every instance booting cold and running the full account
// provisioning, a single build container is provisioned once, its data
// directory snapshotted into an image, and each fleet instance's data
// directory is seeded from that snapshot before first start.
package golden

import (
	"context"
	"fmt"
	"log"
	"time"

	"postefleet/internal/fleet"
	"postefleet/internal/platform/docker"
	"postefleet/internal/poste"
)

// buildContainerName deliberately carries no instance number so the
// status view skips it.
const buildContainerName = "poste-golden-build"

// seedPath is where the build bakes its provisioned data directory.
// The live /data of a committed container is clobbered by the entrypoint
// on boot, so the snapshot lives at an alternate path.
const seedPath = "/data-seed"

// Builder produces the golden image from a throwaway build container.
type Builder struct {
	ctrl *fleet.Controller

	// Waiter is replaceable for tests.
	Waiter *poste.Waiter

	// Provisioner creates the domains and accounts baked into the image.
	Provisioner *poste.Provisioner
}

// NewBuilder returns a builder over the given fleet controller.
func NewBuilder(ctrl *fleet.Controller) *Builder {
	rt := ctrl.Runtime()
	return &Builder{
		ctrl:        ctrl,
		Waiter:      poste.NewWaiter(rt),
		Provisioner: poste.NewProvisioner(rt),
	}
}

// BuildOptions tune a golden image build.
type BuildOptions struct {
	// Domains to bake into the image.
	Domains []string

	// Users created under every domain.
	Users []poste.User

	// Force rebuilds even when the golden tag already exists.
	Force bool
}

// Build provisions a volume-less build container and commits its data
// snapshot as the configured golden image tag. The build container is
// removed afterwards, also on failure.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) error {
	cfg := b.ctrl.Config()
	rt := b.ctrl.Runtime()

	if !opts.Force {
		exists, err := rt.ImageExists(ctx, cfg.GoldenImage)
		if err != nil {
			return fmt.Errorf("failed to check for golden image: %w", err)
		}
		if exists {
			log.Printf("Golden image %s already exists, skipping build (use --force to rebuild)", cfg.GoldenImage)
			return nil
		}
	}

	started := time.Now()
	log.Printf("Building golden image %s (%d domains, %d users each)",
		cfg.GoldenImage, len(opts.Domains), len(opts.Users))

	// Instance 0's ports, but no volume: all state stays in the container
	// so the commit captures it.
	if _, err := b.ctrl.Start(ctx, 0, fleet.StartOptions{
		WithoutVolume: true,
		NameOverride:  buildContainerName,
	}); err != nil {
		return fmt.Errorf("failed to start build container: %w", err)
	}
	defer func() {
		if err := rt.StopAndRemove(context.WithoutCancel(ctx), buildContainerName); err != nil {
			log.Printf("Failed to remove build container: %v", err)
		}
	}()

	id := fleet.Derive(cfg, 0)
	if err := b.Waiter.WaitReady(ctx, buildContainerName, id.WebPort); err != nil {
		return fmt.Errorf("build container never became ready: %w", err)
	}

	summary, err := b.Provisioner.Provision(ctx, buildContainerName, opts.Domains, opts.Users)
	if err != nil {
		return fmt.Errorf("failed to provision build container: %w", err)
	}
	if summary.Statistics.UsersFailed > 0 {
		return fmt.Errorf("golden build aborted: %d of %d account creations failed",
			summary.Statistics.UsersFailed,
			summary.Statistics.UsersCreated+summary.Statistics.UsersFailed)
	}

	if err := b.snapshotData(ctx, rt); err != nil {
		return err
	}

	// Stop before committing so the snapshot is quiescent.
	if err := rt.Stop(ctx, buildContainerName); err != nil {
		return fmt.Errorf("failed to stop build container: %w", err)
	}
	if _, err := rt.Commit(ctx, buildContainerName, cfg.GoldenImage); err != nil {
		return fmt.Errorf("failed to commit golden image: %w", err)
	}

	log.Printf("Golden image %s built in %s", cfg.GoldenImage, time.Since(started).Round(time.Second))
	return nil
}

// snapshotData copies the live data directory to the seed path inside
// the build container.
func (b *Builder) snapshotData(ctx context.Context, rt docker.Runtime) error {
	result, err := rt.Exec(ctx, buildContainerName, []string{"cp", "-a", "/data", seedPath})
	if err != nil {
		return fmt.Errorf("failed to snapshot data directory: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("data snapshot exited %d: %s", result.ExitCode, result.Combined())
	}
	return nil
}

// SeedDataDir populates an instance's host data directory from the
// golden image's baked snapshot using a throwaway container. The target
// directory must already exist.
func SeedDataDir(ctx context.Context, rt docker.Runtime, goldenImage, hostDir string) error {
	err := rt.RunOneShot(ctx, goldenImage,
		[]string{"cp", "-a", seedPath + "/.", "/seed-target/"},
		[]string{hostDir + ":/seed-target"})
	if err != nil {
		return fmt.Errorf("failed to seed %s from %s: %w", hostDir, goldenImage, err)
	}
	return nil
}
