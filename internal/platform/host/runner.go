// Package host abstracts command execution and file placement on the
// target machine. The same provisioning phases run against a remote
// host over SSH or against the local machine.
package host

import (
	"context"
	"strings"
)

// Runner defines the interface for executing commands on the target host.
type Runner interface {
	// Run executes a shell command on the host and returns its combined output.
	// A non-zero exit status is returned as an error.
	Run(ctx context.Context, command string) (string, error)

	// Upload places content at path on the host with the given octal mode
	// (e.g. "0644"). The write is atomic: readers never observe partial content.
	Upload(ctx context.Context, content []byte, path string, mode string) error
}

// Quote returns s single-quoted for safe interpolation into a shell command.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
