// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/platform/host"
	"github.com/imamik/botzner/internal/provisioning"
	"github.com/imamik/botzner/internal/provisioning/account"
	"github.com/imamik/botzner/internal/provisioning/files"
	"github.com/imamik/botzner/internal/provisioning/layout"
	"github.com/imamik/botzner/internal/provisioning/release"
	"github.com/imamik/botzner/internal/provisioning/service"
	"github.com/imamik/botzner/internal/util/prerequisites"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// findConfigFile finds the default config file.
	findConfigFile = config.FindConfigFile

	// newRunner creates the host runner for the configured target.
	newRunner = defaultRunner

	// checkPrereqs runs host-side prerequisite checks.
	checkPrereqs = prerequisites.Check

	// runPhases executes the provisioning pipeline.
	runPhases = provisioning.RunPhases
)

// Apply converges the target host onto the configured state.
//
// The workflow:
//  1. Loads and validates the deployment configuration
//  2. Connects to the target host (SSH, or in-process for local mode)
//  3. Verifies the host carries the tools provisioning shells out to
//  4. Runs the provisioning phases in order: account, layout, files,
//     release, service
//  5. Prints a per-step recap
//
// With dryRun set, phases probe the host and report drift without
// mutating anything.
func Apply(ctx context.Context, configPath string, dryRun bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Applying deployment for service: %s", cfg.Service.Name)

	runner, cleanup, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := checkPrerequisites(ctx, runner, cfg); err != nil {
		return err
	}

	pCtx := provisioning.NewContext(ctx, cfg, runner)
	pCtx.DryRun = dryRun

	phases := []provisioning.Phase{
		account.NewProvisioner(),
		layout.NewProvisioner(),
		files.NewProvisioner(),
		release.NewProvisioner(),
		service.NewProvisioner(),
	}

	if err := runPhases(pCtx, phases); err != nil {
		return err
	}

	fmt.Print(renderRecap(cfg, pCtx.State, dryRun))
	return nil
}

// loadConfig loads and validates the deployment configuration.
// If configPath is empty, it looks for botzner.yaml in the current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		path, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w\nRun 'botzner init' to create one", err)
		}
		configPath = path
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log.Printf("Using config: %s", configPath)
	return cfg, nil
}

// defaultRunner builds the runner for the configured target and a
// cleanup function tearing it down.
func defaultRunner(cfg *config.Config) (host.Runner, func(), error) {
	if cfg.Host.Local {
		return host.NewLocalRunner(), func() {}, nil
	}

	keyPath, err := expandHome(cfg.Host.PrivateKey)
	if err != nil {
		return nil, nil, err
	}
	key, err := os.ReadFile(keyPath) // #nosec G304
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read private key: %w", err)
	}

	runner := host.NewSSHRunner(cfg.Host.Address, cfg.Host.Port, cfg.Host.User, key)
	return runner, func() { _ = runner.Close() }, nil
}

// expandHome resolves a leading ~/ against the current user's home.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// checkPrerequisites verifies the host-side tools before provisioning.
func checkPrerequisites(ctx context.Context, runner host.Runner, cfg *config.Config) error {
	log.Println("Checking host prerequisites...")
	results := checkPrereqs(ctx, runner, prerequisites.DeployTools(cfg.Package.Pip))

	for _, r := range results.Results {
		if r.Found {
			path := r.Path
			if path == "" {
				path = "found"
			}
			log.Printf("  Found %s (%s)", r.Tool.Name, path)
		}
	}

	if err := results.Error(); err != nil {
		return fmt.Errorf("prerequisites check failed: %w", err)
	}

	return nil
}
