// Package orchestration runs named tasks through a bounded worker window
// with a join barrier. Fleet-wide commands fan out per-instance work here
// instead of re-deriving fork/join by hand.
package orchestration

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Task is a named unit of asynchronous work.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Result pairs a task name with its outcome.
type Result struct {
	Name string
	Err  error
}

// RunBounded executes tasks with at most limit running concurrently and
// waits for all of them. Per-task errors are collected, never aborting
// the batch; results come back in completion order.
//
// Set withLogging to true to log task start and completion, useful when
// a fleet bring-up takes minutes.
func RunBounded(ctx context.Context, tasks []Task, limit int, withLogging bool) []Result {
	if len(tasks) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}

	sem := make(chan struct{}, limit)
	resultChan := make(chan Result, len(tasks))

	for _, task := range tasks {
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			if withLogging {
				log.Printf("[%s] Starting at %s", task.Name, time.Now().Format("15:04:05"))
			}
			err := task.Func(ctx)
			if withLogging {
				if err != nil {
					log.Printf("[%s] Failed: %v", task.Name, err)
				} else {
					log.Printf("[%s] Completed at %s", task.Name, time.Now().Format("15:04:05"))
				}
			}
			resultChan <- Result{Name: task.Name, Err: err}
		}()
	}

	results := make([]Result, 0, len(tasks))
	for range len(tasks) {
		results = append(results, <-resultChan)
	}
	return results
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// FirstError returns the first error in the results, wrapped with its
// task name, or nil.
func FirstError(results []Result) error {
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Name, r.Err)
		}
	}
	return nil
}
