// Package poste drives the Poste.io admin console of a running instance:
// readiness polling, domain and account provisioning, and the domain
// rewriting needed when many instances each get their own mail domain.
package poste

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultDomain matches the original single-instance setup. Fixtures and
// user-source files are written against it and rewritten per instance.
const DefaultDomain = "mcp.com"

// domainEnvVar overrides the active mail domain for this process.
const domainEnvVar = "POSTEFLEET_EMAIL_DOMAIN"

// EmailDomain returns the mail domain for the current instance, from the
// environment or the default.
func EmailDomain() string {
	if domain := os.Getenv(domainEnvVar); domain != "" {
		return domain
	}
	return DefaultDomain
}

// Address builds a full address from a local part using the active domain.
func Address(localPart string) string {
	return fmt.Sprintf("%s@%s", localPart, EmailDomain())
}

// RewriteAddress moves an address onto the target domain, keeping the
// local part. A bare local part is completed with the target domain.
func RewriteAddress(address, target string) string {
	local, _, found := strings.Cut(address, "@")
	if !found {
		local = address
	}
	return local + "@" + target
}

// RewriteValue recursively replaces "@source" with "@target" in strings,
// maps and slices, returning a new value. Scalars pass through unchanged.
func RewriteValue(v any, source, target string) any {
	if source == target {
		return v
	}
	old, new := "@"+source, "@"+target

	switch typed := v.(type) {
	case string:
		return strings.ReplaceAll(typed, old, new)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[strings.ReplaceAll(key, old, new)] = RewriteValue(value, source, target)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = RewriteValue(item, source, target)
		}
		return out
	default:
		return v
	}
}

// LoadAndRewriteJSON loads a JSON file and rewrites all @source addresses
// to the target domain.
func LoadAndRewriteJSON(path, source, target string) (any, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return RewriteValue(v, source, target), nil
}

// RewriteJSONFileInPlace rewrites @source addresses to the target domain
// in a file on disk. Useful for config files read by external tools. A
// no-op when the domains match.
func RewriteJSONFileInPlace(path, source, target string) error {
	if source == target {
		return nil
	}
	// #nosec G304
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	rewritten := strings.ReplaceAll(string(content), "@"+source, "@"+target)
	if rewritten == string(content) {
		return nil
	}
	if err := os.WriteFile(path, []byte(rewritten), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
