// Package prerequisites checks that required client tools are installed
// before the cloud commands shell out to them.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is a client binary that may be required.
type Tool struct {
	Name        string
	Required    bool
	Description string
	InstallURL  string
}

// CloudTools returns the tools needed by the fleetvm and gcpproject
// commands.
func CloudTools() []Tool {
	return []Tool{
		{
			Name:        "gcloud",
			Required:    true,
			Description: "Required for Google Cloud project and VM operations",
			InstallURL:  "https://cloud.google.com/sdk/docs/install",
		},
	}
}

// CheckResult is the outcome for a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults aggregates the outcome for a tool set.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// Error returns an error naming the missing required tools, or nil.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check looks the tools up in PATH and probes their version.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}
	for _, tool := range tools {
		result := CheckResult{Tool: tool}
		if path, err := exec.LookPath(tool.Name); err == nil {
			result.Found = true
			result.Path = path
			result.Version = probeVersion(tool.Name)
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, result)
	}
	return results
}

func probeVersion(name string) string {
	out, err := exec.Command(name, "--version").Output()
	if err != nil {
		return ""
	}
	lines := strings.SplitN(strings.TrimSpace(string(out)), "\n", 2)
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}

// CheckCloud checks the default cloud tool set.
func CheckCloud() *CheckResults {
	return Check(CloudTools())
}
