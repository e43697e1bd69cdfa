package poste

import (
	"context"
	"fmt"
	"strings"

	"postefleet/internal/platform/docker"
)

// consolePath is the admin console binary inside the Poste.io container.
const consolePath = "/admin/bin/console"

// missingTableSentinel is matched against console output to detect an
// uninitialized embedded database. This couples to the wording of a
// third-party tool's error output; there is no stable contract for it.
const missingTableSentinel = "no such table"

// Console invokes the admin console binary of one running instance.
type Console struct {
	rt        docker.Runtime
	container string
}

// NewConsole returns a console bound to the named container.
func NewConsole(rt docker.Runtime, container string) *Console {
	return &Console{rt: rt, container: container}
}

// run executes a console subcommand and returns the captured result.
// The result is returned even when the remote exit code is non-zero so
// callers can sentinel-match the output.
func (c *Console) run(ctx context.Context, args ...string) (docker.ExecResult, error) {
	cmd := append([]string{consolePath}, args...)
	return c.rt.Exec(ctx, c.container, cmd)
}

// DomainList returns the mail domains known to the instance.
func (c *Console) DomainList(ctx context.Context) ([]string, error) {
	result, err := c.run(ctx, "domain:list")
	if err != nil {
		return nil, fmt.Errorf("domain:list failed: %w", err)
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("domain:list exited %d: %s", result.ExitCode, strings.TrimSpace(result.Combined()))
	}

	var domains []string
	for _, line := range strings.Split(result.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ".") {
			continue
		}
		domains = append(domains, line)
	}
	return domains, nil
}

// DomainCreate registers a mail domain. An already-existing domain is
// not an error.
func (c *Console) DomainCreate(ctx context.Context, domain string) error {
	result, err := c.run(ctx, "domain:create", domain)
	if err != nil {
		return fmt.Errorf("domain:create %s failed: %w", domain, err)
	}
	if result.ExitCode != 0 && !strings.Contains(result.Combined(), "already exists") {
		return fmt.Errorf("domain:create %s exited %d: %s", domain, result.ExitCode, strings.TrimSpace(result.Combined()))
	}
	return nil
}

// EmailCreate creates one mail account.
func (c *Console) EmailCreate(ctx context.Context, address, password, fullName string) error {
	result, err := c.run(ctx, "email:create", address, password, fullName)
	if err != nil {
		return fmt.Errorf("email:create %s failed: %w", address, err)
	}
	if result.ExitCode != 0 && !strings.Contains(result.Combined(), "already exists") {
		return fmt.Errorf("email:create %s exited %d: %s", address, result.ExitCode, strings.TrimSpace(result.Combined()))
	}
	return nil
}

// EmailAdmin grants an existing account admin rights.
func (c *Console) EmailAdmin(ctx context.Context, address string) error {
	result, err := c.run(ctx, "email:admin", address)
	if err != nil {
		return fmt.Errorf("email:admin %s failed: %w", address, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("email:admin %s exited %d: %s", address, result.ExitCode, strings.TrimSpace(result.Combined()))
	}
	return nil
}

// SchemaCreate initializes the embedded database schema.
func (c *Console) SchemaCreate(ctx context.Context) error {
	result, err := c.run(ctx, "doctrine:schema:create")
	if err != nil {
		return fmt.Errorf("doctrine:schema:create failed: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("doctrine:schema:create exited %d: %s", result.ExitCode, strings.TrimSpace(result.Combined()))
	}
	return nil
}

// SchemaProbe runs a harmless read command and returns its raw combined
// output for sentinel matching.
func (c *Console) SchemaProbe(ctx context.Context) (string, error) {
	result, err := c.run(ctx, "domain:list")
	if err != nil {
		return "", fmt.Errorf("schema probe failed: %w", err)
	}
	return result.Combined(), nil
}

// IsMissingTable reports whether console output indicates the embedded
// database has no schema yet.
func IsMissingTable(output string) bool {
	return strings.Contains(strings.ToLower(output), missingTableSentinel)
}
