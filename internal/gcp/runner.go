// Package gcp provisions Google Cloud projects and fleet VMs by driving
// the gcloud CLI. There is no Google SDK dependency: gcloud already
// handles auth, retries and API plumbing, and the operations here are
// thin idempotent-by-check sequences over it.
package gcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes gcloud invocations. Captured runs return trimmed
// stdout; interactive runs inherit the caller's terminal.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
	Interactive(ctx context.Context, args ...string) error
}

// CLIRunner shells out to the gcloud binary on PATH.
type CLIRunner struct {
	Binary string
}

// NewCLIRunner returns a runner using the default binary name.
func NewCLIRunner() *CLIRunner {
	return &CLIRunner{Binary: "gcloud"}
}

// Run executes gcloud with the given arguments and returns its trimmed
// stdout. A non-zero exit wraps the command's stderr.
func (r *CLIRunner) Run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("gcloud %s: %s", strings.Join(args, " "), detail)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Interactive executes gcloud attached to the caller's terminal, for
// subcommands like `compute ssh` that need a TTY.
func (r *CLIRunner) Interactive(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gcloud %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// firstLine returns the first non-empty line of CLI output.
func firstLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
