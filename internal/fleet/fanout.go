package fleet

import (
	"context"
	"fmt"

	"postefleet/internal/orchestration"
)

// BatchResult summarizes a fleet-wide operation.
type BatchResult struct {
	Succeeded int
	Failed    int
	Errors    []error
}

// StartAll brings up instances 0..cfg.Instances-1 with at most
// cfg.MaxParallel concurrent starts. prepare, when non-nil, runs before
// each instance start (golden clones seed their data dir there); finish,
// when non-nil, runs after a successful start (readiness wait, account
// setup). Per-instance failures are collected, never aborting the batch.
func (c *Controller) StartAll(ctx context.Context, opts StartOptions, prepare, finish func(context.Context, Identity) error) BatchResult {
	tasks := make([]orchestration.Task, 0, c.cfg.Instances)
	for index := 0; index < c.cfg.Instances; index++ {
		tasks = append(tasks, orchestration.Task{
			Name: fmt.Sprintf("start %s%d", NamePrefix, index),
			Func: func(ctx context.Context) error {
				id := Derive(c.cfg, index)
				if prepare != nil {
					if err := prepare(ctx, id); err != nil {
						return fmt.Errorf("prepare failed: %w", err)
					}
				}
				if _, err := c.Start(ctx, index, opts); err != nil {
					return err
				}
				if finish != nil {
					return finish(ctx, id)
				}
				return nil
			},
		})
	}
	return summarize(orchestration.RunBounded(ctx, tasks, c.cfg.MaxParallel, true))
}

// StopAll tears down instances 0..cfg.Instances-1 with bounded
// parallelism. Missing instances are no-ops.
func (c *Controller) StopAll(ctx context.Context) BatchResult {
	tasks := make([]orchestration.Task, 0, c.cfg.Instances)
	for index := 0; index < c.cfg.Instances; index++ {
		tasks = append(tasks, orchestration.Task{
			Name: fmt.Sprintf("stop %s%d", NamePrefix, index),
			Func: func(ctx context.Context) error {
				return c.Stop(ctx, index)
			},
		})
	}
	return summarize(orchestration.RunBounded(ctx, tasks, c.cfg.MaxParallel, true))
}

func summarize(results []orchestration.Result) BatchResult {
	batch := BatchResult{}
	for _, r := range results {
		if r.Err != nil {
			batch.Failed++
			batch.Errors = append(batch.Errors, fmt.Errorf("%s: %w", r.Name, r.Err))
			continue
		}
		batch.Succeeded++
	}
	return batch
}
