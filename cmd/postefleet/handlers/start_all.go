package handlers

import (
	"context"
	"fmt"
	"log"

	"postefleet/internal/fleet"
	"postefleet/internal/metrics"
)

// serveMetrics exposes progress counters during long runs - replaced in
// tests.
var serveMetrics = metrics.Serve

// StartAll brings up the whole configured fleet with bounded
// parallelism: each instance is started, waited for readiness, and given
// its admin account. Per-instance failures are counted, not fatal to
// siblings.
func StartAll(ctx context.Context, configPath string, useGolden bool) error {
	ctrl, err := controller(configPath)
	if err != nil {
		return err
	}
	cfg := ctrl.Config()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := serveMetrics(ctx, cfg.MetricsAddr); err != nil {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
	}

	var opts fleet.StartOptions
	var prepare func(context.Context, fleet.Identity) error
	if useGolden {
		exists, err := ctrl.Runtime().ImageExists(ctx, cfg.GoldenImage)
		if err != nil {
			return fmt.Errorf("failed to check for golden image: %w", err)
		}
		if !exists {
			return fmt.Errorf("golden image %s not found; run 'postefleet build_golden' first", cfg.GoldenImage)
		}
		opts.Image = cfg.GoldenImage
		prepare = func(ctx context.Context, id fleet.Identity) error {
			return seedIfEmpty(ctx, ctrl, id)
		}
	}

	finish := func(ctx context.Context, id fleet.Identity) error {
		return finishInstance(ctx, ctrl, id.Index)
	}

	log.Printf("Starting %d instance(s), %d at a time", cfg.Instances, cfg.MaxParallel)
	batch := ctrl.StartAll(ctx, opts, prepare, finish)
	for _, err := range batch.Errors {
		log.Printf("Start failed: %v", err)
	}

	log.Printf("start_all complete: %d ready, %d failed", batch.Succeeded, batch.Failed)
	if batch.Failed > 0 {
		return fmt.Errorf("%d of %d instances failed", batch.Failed, cfg.Instances)
	}
	return nil
}
