package handlers

import (
	"context"
	"testing"

	"postefleet/internal/config"
	"postefleet/internal/platform/docker"
)

// saveAndRestoreFactories saves the current factory functions and
// registers a cleanup to restore them.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origNewRuntime := newRuntime
	origNewWaiter := newWaiter
	origSeedDataDir := seedDataDir
	origServeMetrics := serveMetrics
	origRenderStatus := renderStatus
	origNewBuilder := newBuilder
	origLoadUsers := loadUsers
	origNewProvisioner := newProvisioner
	origNewArchiver := newArchiver
	origFileExists := fileExists
	origRunWizard := runWizard
	origWriteConfig := writeConfig

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		newRuntime = origNewRuntime
		newWaiter = origNewWaiter
		seedDataDir = origSeedDataDir
		serveMetrics = origServeMetrics
		renderStatus = origRenderStatus
		newBuilder = origNewBuilder
		loadUsers = origLoadUsers
		newProvisioner = origNewProvisioner
		newArchiver = origNewArchiver
		fileExists = origFileExists
		runWizard = origRunWizard
		writeConfig = origWriteConfig
	})
}

// stubWaiter satisfies readinessWaiter with a scripted result.
type stubWaiter struct {
	err   error
	calls []string
}

func (s *stubWaiter) WaitReady(_ context.Context, containerName string, _ int) error {
	s.calls = append(s.calls, containerName)
	return s.err
}

// wireFakeFleet points the factories at a fake runtime and a small test
// config, returning both.
func wireFakeFleet(t *testing.T) (*config.Config, *docker.Fake) {
	t.Helper()
	saveAndRestoreFactories(t)

	cfg := config.Default()
	cfg.DataRoot = t.TempDir()
	cfg.Instances = 2
	cfg.MaxParallel = 2

	rt := docker.NewFake()
	loadConfig = func(_ string) (*config.Config, error) { return cfg, nil }
	newRuntime = func() (docker.Runtime, error) { return rt, nil }
	newWaiter = func(_ docker.Runtime) readinessWaiter { return &stubWaiter{} }
	return cfg, rt
}
