package fleet

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"postefleet/internal/config"
	"postefleet/internal/metrics"
	"postefleet/internal/platform/docker"
)

// instanceLabel marks fleet containers with their index.
const instanceLabel = "postefleet.instance"

// Controller drives the lifecycle of individual fleet instances.
type Controller struct {
	rt  docker.Runtime
	cfg *config.Config
}

// NewController returns a controller over the given runtime.
func NewController(rt docker.Runtime, cfg *config.Config) *Controller {
	return &Controller{rt: rt, cfg: cfg}
}

// StartOptions tune a single instance start.
type StartOptions struct {
	// Image overrides the configured image (golden clones pass the
	// golden tag here).
	Image string

	// WithoutVolume runs the instance with no host data mount so all
	// state lands in the container's writable layer. Used by the golden
	// image build.
	WithoutVolume bool

	// NameOverride replaces the derived container name (golden build
	// containers are not regular fleet members).
	NameOverride string
}

// Start brings up instance index. Re-invoking for a running instance is
// a no-op; a stale container with the same name is replaced. Reports
// whether a new container was actually started.
func (c *Controller) Start(ctx context.Context, index int, opts StartOptions) (bool, error) {
	id := Derive(c.cfg, index)
	if opts.NameOverride != "" {
		id.ContainerName = opts.NameOverride
	}

	image := opts.Image
	if image == "" {
		image = c.cfg.Image
	}

	spec := docker.RunSpec{
		Image:    image,
		Name:     id.ContainerName,
		Hostname: id.Domain,
		// The Poste.io flag template. This set is the compatibility
		// contract with the image and must not drift.
		Env: []string{
			"HTTPS=OFF",
			"DISABLE_CLAMAV=TRUE",
			"DISABLE_RSPAMD=TRUE",
		},
		CapAdd: []string{"NET_ADMIN"},
		Ports: map[int]int{
			80:  id.WebPort,
			25:  id.SMTPPort,
			143: id.IMAPPort,
			587: id.SubmissionPort,
		},
		Labels: map[string]string{instanceLabel: strconv.Itoa(index)},
	}

	if !opts.WithoutVolume {
		if err := os.MkdirAll(id.DataDir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create data dir %s: %w", id.DataDir, err)
		}
		spec.Binds = []string{id.DataDir + ":/data"}
	}

	_, alreadyRunning, err := c.rt.EnsureRunning(ctx, spec)
	if err != nil {
		metrics.InstanceFailures.Inc()
		return false, err
	}
	if alreadyRunning {
		log.Printf("Instance %d already running as %s, skipping", index, id.ContainerName)
		return false, nil
	}

	metrics.InstancesStarted.Inc()
	log.Printf("Instance %d started: %s (web :%d, smtp :%d, imap :%d, submission :%d)",
		index, id.ContainerName, id.WebPort, id.SMTPPort, id.IMAPPort, id.SubmissionPort)
	return true, nil
}

// Stop tears down instance index and deletes its host data directory.
// A non-existent instance is not an error.
func (c *Controller) Stop(ctx context.Context, index int) error {
	id := Derive(c.cfg, index)

	if err := c.rt.StopAndRemove(ctx, id.ContainerName); err != nil {
		metrics.InstanceFailures.Inc()
		return fmt.Errorf("failed to stop instance %d: %w", index, err)
	}

	if err := c.removeDataDir(ctx, id); err != nil {
		return fmt.Errorf("failed to remove data dir for instance %d: %w", index, err)
	}

	metrics.InstancesStopped.Inc()
	return nil
}

// removeDataDir deletes the instance data directory. Files created by
// the container are often root-owned; on a permission failure the
// deletion is retried through a helper container bound to the data root.
func (c *Controller) removeDataDir(ctx context.Context, id Identity) error {
	if _, err := os.Stat(id.DataDir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(id.DataDir); err == nil {
		return nil
	}

	log.Printf("Direct removal of %s failed, scrubbing via helper container", id.DataDir)
	return c.rt.RunOneShot(ctx, c.cfg.Image,
		[]string{"rm", "-rf", "/scrub/" + filepath.Base(id.DataDir)},
		[]string{c.cfg.DataRoot + ":/scrub"})
}

// Instance is a running fleet member with its derived identity.
type Instance struct {
	Identity
	Image  string
	State  string
	Status string
}

// Status lists the currently running fleet instances, ordered by index.
func (c *Controller) Status(ctx context.Context) ([]Instance, error) {
	containers, err := c.rt.List(ctx, NamePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list fleet containers: %w", err)
	}

	var instances []Instance
	for _, info := range containers {
		index, err := IndexFromName(info.Name)
		if err != nil {
			// Not a numbered instance (e.g. a golden build container).
			continue
		}
		instances = append(instances, Instance{
			Identity: Derive(c.cfg, index),
			Image:    info.Image,
			State:    info.State,
			Status:   info.Status,
		})
	}
	// The daemon lists by name, which sorts poste-10 before poste-2.
	sort.Slice(instances, func(i, j int) bool { return instances[i].Index < instances[j].Index })
	return instances, nil
}

// Config exposes the controller's configuration to collaborators.
func (c *Controller) Config() *config.Config {
	return c.cfg
}

// Runtime exposes the underlying container runtime to collaborators.
func (c *Controller) Runtime() docker.Runtime {
	return c.rt
}
