// Package main is the entry point for the postefleet CLI.
//
// postefleet orchestrates a local fleet of Poste.io mail server
// containers for test and benchmark runs: per-index port/name
// derivation, idempotent start/stop, readiness polling, bulk account
// provisioning, and golden-image cloning for fast bring-up.
//
// Commands: init, start, stop, status, start_all, stop_all,
// build_golden, accounts, config, generate_configs, archive.
//
// For detailed usage information, run:
//
//	postefleet --help
package main

import (
	"fmt"
	"os"

	"postefleet/cmd/postefleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
