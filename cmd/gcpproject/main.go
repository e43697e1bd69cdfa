// Package main is the entry point for the gcpproject CLI.
//
// gcpproject provisions Google Cloud projects for benchmark runs:
// find-or-create the project, link the first open billing account,
// enable the required API and grant a role to the derived account.
package main

import (
	"fmt"
	"os"

	"postefleet/cmd/gcpproject/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
