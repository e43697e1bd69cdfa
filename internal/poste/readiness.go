package poste

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"postefleet/internal/metrics"
	"postefleet/internal/platform/docker"
	"postefleet/internal/util/retry"
)

// Probe budget. The mail server can take well over a minute to unpack
// its data directory on first boot.
const (
	DefaultProbeAttempts = 90
	DefaultProbeInterval = 2 * time.Second
)

// databaseFile is the embedded database inside the container, wiped and
// recreated when the schema turns out to be missing.
const databaseFile = "/data/db.sqlite"

// Waiter polls an instance until its web stack responds and its embedded
// database schema exists, within a fixed attempt budget.
type Waiter struct {
	rt docker.Runtime

	HTTP     *http.Client
	Host     string
	Attempts int
	Interval time.Duration
}

// NewWaiter returns a waiter with the default probe budget.
func NewWaiter(rt docker.Runtime) *Waiter {
	return &Waiter{
		rt:       rt,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
		Host:     "localhost",
		Attempts: DefaultProbeAttempts,
		Interval: DefaultProbeInterval,
	}
}

// WaitReady blocks until the instance's web port answers and the schema
// check passes, or the attempt budget runs out. Always terminates within
// the budget regardless of upstream slowness.
func (w *Waiter) WaitReady(ctx context.Context, containerName string, webPort int) error {
	if err := w.waitHTTP(ctx, webPort); err != nil {
		return fmt.Errorf("instance %s web stack not ready: %w", containerName, err)
	}
	if err := w.EnsureSchema(ctx, containerName); err != nil {
		return fmt.Errorf("instance %s schema not ready: %w", containerName, err)
	}
	return nil
}

// waitHTTP probes the web port until any well-formed HTTP response comes
// back. The status code does not matter: a 500 from the app stack still
// means the listener is up.
func (w *Waiter) waitHTTP(ctx context.Context, webPort int) error {
	url := fmt.Sprintf("http://%s:%d/", w.Host, webPort)
	return retry.Fixed(ctx, w.Attempts, w.Interval, func() error {
		metrics.ReadinessAttempts.Inc()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Fatal(err)
		}
		resp, err := w.HTTP.Do(req)
		if err != nil {
			return fmt.Errorf("probe %s: %w", url, err)
		}
		_ = resp.Body.Close()
		return nil
	})
}

// EnsureSchema verifies the embedded database schema exists. On a
// detected missing-table error the database file is wiped and recreated,
// with one further retry before giving up.
func (w *Waiter) EnsureSchema(ctx context.Context, containerName string) error {
	console := NewConsole(w.rt, containerName)

	output, err := console.SchemaProbe(ctx)
	if err != nil {
		return err
	}
	if !IsMissingTable(output) {
		return nil
	}

	log.Printf("Instance %s reports missing tables, recreating schema", containerName)
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := w.recreateSchema(ctx, console, containerName); err != nil {
			lastErr = err
			continue
		}
		output, err := console.SchemaProbe(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if !IsMissingTable(output) {
			return nil
		}
		lastErr = fmt.Errorf("schema still missing after recreation")
	}
	return fmt.Errorf("failed to recreate schema for %s: %w", containerName, lastErr)
}

func (w *Waiter) recreateSchema(ctx context.Context, console *Console, containerName string) error {
	// Remove the (possibly half-written) database file first; schema
	// creation refuses to run over existing tables.
	result, err := w.rt.Exec(ctx, containerName, []string{"rm", "-f", databaseFile})
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", databaseFile, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("failed to remove %s: exit %d", databaseFile, result.ExitCode)
	}
	return console.SchemaCreate(ctx)
}
