package host

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// LocalRunner executes commands on the machine botzner runs on.
// Used with host.local: true, typically inside a bootstrap script
// already running on the target.
type LocalRunner struct{}

// NewLocalRunner creates a runner for the local machine.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run implements Runner.
func (r *LocalRunner) Run(ctx context.Context, command string) (string, error) {
	// #nosec G204 -- commands are assembled from validated config, not raw user input
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("command %q failed: %w, output: %s", command, err, output)
	}
	return string(output), nil
}

// Upload implements Runner. Writes to a temp file in the target
// directory and renames it into place so the write is atomic.
func (r *LocalRunner) Upload(_ context.Context, content []byte, path string, mode string) error {
	perm, err := strconv.ParseUint(mode, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid mode %q: %w", mode, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".botzner-upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(os.FileMode(perm)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move into place %s: %w", path, err)
	}
	return nil
}
