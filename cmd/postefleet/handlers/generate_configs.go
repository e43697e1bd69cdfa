package handlers

import (
	"context"
	"log"
)

// GenerateConfigs writes one credential JSON per running instance plus
// the merged index file.
func GenerateConfigs(ctx context.Context, configPath, outDir string) error {
	ctrl, err := controller(configPath)
	if err != nil {
		return err
	}
	index, err := ctrl.GenerateConfigs(ctx, outDir)
	if err != nil {
		return err
	}
	log.Printf("Wrote %d credential file(s) to %s", index.TotalInstances, outDir)
	return nil
}
