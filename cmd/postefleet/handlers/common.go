// Package handlers implements the business logic for postefleet
// commands. Handlers are framework-agnostic and tested independently of
// the CLI framework; collaborators are created through package-level
// factory variables that tests replace.
package handlers

import (
	"postefleet/internal/config"
	"postefleet/internal/fleet"
	"postefleet/internal/platform/docker"
)

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// loadConfig resolves the effective fleet configuration.
	loadConfig = config.Load

	// newRuntime connects to the container runtime.
	newRuntime = func() (docker.Runtime, error) {
		return docker.NewClient()
	}
)

// controller builds the fleet controller from the config path.
func controller(configPath string) (*fleet.Controller, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	rt, err := newRuntime()
	if err != nil {
		return nil, err
	}
	return fleet.NewController(rt, cfg), nil
}
