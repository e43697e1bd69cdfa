// Package metrics exposes Prometheus counters for fleet operations.
// Benchmark fleet bring-ups run for minutes; serving these during
// start_all gives external observers progress without log scraping.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// InstancesStarted counts successful instance starts.
	InstancesStarted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "postefleet_instances_started_total",
		Help: "Number of mail server instances started.",
	})

	// InstancesStopped counts successful instance stops.
	InstancesStopped = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "postefleet_instances_stopped_total",
		Help: "Number of mail server instances stopped.",
	})

	// InstanceFailures counts failed instance operations.
	InstanceFailures = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "postefleet_instance_failures_total",
		Help: "Number of failed instance lifecycle operations.",
	})

	// ReadinessAttempts counts HTTP readiness probe attempts.
	ReadinessAttempts = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "postefleet_readiness_probe_attempts_total",
		Help: "Number of readiness probe attempts across all instances.",
	})

	// AccountsCreated counts successfully provisioned mail accounts.
	AccountsCreated = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "postefleet_accounts_created_total",
		Help: "Number of mail accounts created.",
	})

	// AccountsFailed counts failed account creations.
	AccountsFailed = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "postefleet_accounts_failed_total",
		Help: "Number of mail account creations that failed.",
	})
)

// Handler serves the fleet metric registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done. Intended to run in
// the background of long fleet operations; errors other than a clean
// shutdown are returned.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
