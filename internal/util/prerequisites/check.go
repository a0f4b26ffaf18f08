// Package prerequisites verifies the target host carries the tools
// provisioning shells out to.
package prerequisites

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/botzner/internal/platform/host"
)

// Tool represents a host tool that may be required.
type Tool struct {
	// Name is the binary name to look for on the host.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// Hint suggests how to get the tool onto the host.
	Hint string
}

// DeployTools returns the tools an apply run shells out to. pip is
// the configured executable, typically pip3.
func DeployTools(pip string) []Tool {
	return []Tool{
		{
			Name:        "getent",
			Required:    true,
			Description: "Required to probe for the service user",
			Hint:        "part of glibc on every mainstream distro",
		},
		{
			Name:        "useradd",
			Required:    true,
			Description: "Required to create the service user",
			Hint:        "install the passwd/shadow-utils package",
		},
		{
			Name:        "install",
			Required:    true,
			Description: "Required for atomic file placement",
			Hint:        "part of coreutils",
		},
		{
			Name:        "systemctl",
			Required:    true,
			Description: "Required to manage the service unit",
			Hint:        "the target must run systemd",
		},
		{
			Name:        pip,
			Required:    true,
			Description: "Required to install the application package",
			Hint:        "install the python3-pip package",
		},
		{
			Name:        "git",
			Required:    false,
			Description: "pip fetches the package source via git",
			Hint:        "install the git package",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.Hint))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools on host: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available on the host.
func Check(ctx context.Context, runner host.Runner, tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		out, err := runner.Run(ctx, "command -v "+host.Quote(tool.Name))
		if err == nil && strings.TrimSpace(out) != "" {
			result.Found = true
			result.Path = strings.TrimSpace(out)
		} else if err == nil {
			result.Found = true
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}
