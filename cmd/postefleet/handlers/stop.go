package handlers

import (
	"context"
	"fmt"
	"log"
)

// Stop tears down one fleet instance.
func Stop(ctx context.Context, configPath string, index int) error {
	ctrl, err := controller(configPath)
	if err != nil {
		return err
	}
	if err := ctrl.Stop(ctx, index); err != nil {
		return err
	}
	log.Printf("Instance %d stopped", index)
	return nil
}

// StopAll tears down the whole configured fleet with bounded
// parallelism.
func StopAll(ctx context.Context, configPath string) error {
	ctrl, err := controller(configPath)
	if err != nil {
		return err
	}

	batch := ctrl.StopAll(ctx)
	log.Printf("stop_all complete: %d stopped, %d failed", batch.Succeeded, batch.Failed)
	if batch.Failed > 0 {
		return fmt.Errorf("%d of %d instances failed to stop", batch.Failed, batch.Succeeded+batch.Failed)
	}
	return nil
}
