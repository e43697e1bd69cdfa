package handlers

import (
	"context"
	"fmt"
	"log"

	"postefleet/internal/config"
	"postefleet/internal/platform/s3"
)

// Archiver is the object-store surface the archive handler needs.
type Archiver interface {
	EnsureBucket(ctx context.Context) error
	UploadDir(ctx context.Context, runID, dir string) ([]string, error)
}

// newArchiver connects to the configured object store - replaced in
// tests.
var newArchiver = func(cfg config.ArchiveConfig) (Archiver, error) {
	return s3.NewArchiver(cfg.Endpoint, cfg.Region, cfg.Bucket, cfg.AccessKey, cfg.SecretKey)
}

// Archive uploads every file under dir to the configured bucket, keyed
// by run ID.
func Archive(ctx context.Context, configPath, runID, dir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.Archive.Enabled() {
		return fmt.Errorf("archiving is not configured: set archive.endpoint and archive.bucket")
	}

	arch, err := newArchiver(cfg.Archive)
	if err != nil {
		return err
	}
	if err := arch.EnsureBucket(ctx); err != nil {
		return err
	}
	keys, err := arch.UploadDir(ctx, runID, dir)
	if err != nil {
		return err
	}
	log.Printf("Archived %d artifact(s) under %s/%s", len(keys), cfg.Archive.Bucket, runID)
	return nil
}
