// Package main is the entry point for the fleetvm CLI.
//
// fleetvm manages the Google Cloud VM that hosts a benchmark fleet:
// create (with a generated SSH key), delete, ssh, info, firewall and
// resize, all driven through the gcloud CLI.
package main

import (
	"fmt"
	"os"

	"postefleet/cmd/fleetvm/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
