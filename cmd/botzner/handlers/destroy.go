package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/platform/host"
)

// Destroy removes everything apply placed on the host: the service,
// the unit file, the installed package, both directories and the
// service user. Refuses to run without force; the data dir holds the
// bot's state and is gone afterwards.
func Destroy(ctx context.Context, configPath string, force bool) error {
	if !force {
		return fmt.Errorf("destroy removes the service, its package, data and user; re-run with --force to confirm")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Destroying deployment for service: %s", cfg.Service.Name)

	runner, cleanup, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return teardown(ctx, cfg, runner)
}

// teardown undoes the provisioning steps in reverse order. Steps whose
// target is already gone are skipped, so a partial earlier destroy can
// be re-run.
func teardown(ctx context.Context, cfg *config.Config, runner host.Runner) error {
	name := host.Quote(cfg.Service.Name)

	if _, err := runner.Run(ctx, "systemctl is-active "+name); err == nil {
		log.Printf("Stopping service %s", cfg.Service.Name)
		if _, err := runner.Run(ctx, "systemctl stop "+name); err != nil {
			return fmt.Errorf("failed to stop service: %w", err)
		}
	}
	if _, err := runner.Run(ctx, "systemctl is-enabled "+name); err == nil {
		log.Printf("Disabling service %s", cfg.Service.Name)
		if _, err := runner.Run(ctx, "systemctl disable "+name); err != nil {
			return fmt.Errorf("failed to disable service: %w", err)
		}
	}

	unitPath := cfg.UnitFilePath()
	if _, err := runner.Run(ctx, "test -e "+host.Quote(unitPath)); err == nil {
		log.Printf("Removing unit file %s", unitPath)
		if _, err := runner.Run(ctx, "rm -f "+host.Quote(unitPath)); err != nil {
			return fmt.Errorf("failed to remove unit file: %w", err)
		}
		if _, err := runner.Run(ctx, "systemctl daemon-reload"); err != nil {
			return fmt.Errorf("failed to reload systemd: %w", err)
		}
	}

	pkg := cfg.Package
	if _, err := runner.Run(ctx, fmt.Sprintf("%s show %s", pkg.Pip, host.Quote(pkg.Name))); err == nil {
		log.Printf("Uninstalling package %s", pkg.Name)
		command := fmt.Sprintf("%s uninstall --yes %s", pkg.Pip, host.Quote(pkg.Name))
		if _, err := runner.Run(ctx, command); err != nil {
			return fmt.Errorf("failed to uninstall %s: %w", pkg.Name, err)
		}
	}

	for _, dir := range []string{cfg.Service.ConfigDir, cfg.Service.DataDir} {
		if _, err := runner.Run(ctx, "test -d "+host.Quote(dir)); err != nil {
			continue
		}
		log.Printf("Removing directory %s", dir)
		if _, err := runner.Run(ctx, "rm -rf "+host.Quote(dir)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}

	user := host.Quote(cfg.Service.User)
	if _, err := runner.Run(ctx, "getent passwd "+user); err == nil {
		log.Printf("Removing user %s", cfg.Service.User)
		if _, err := runner.Run(ctx, "userdel "+user); err != nil {
			return fmt.Errorf("failed to remove user %s: %w", cfg.Service.User, err)
		}
	}

	log.Printf("Deployment %s destroyed", cfg.Service.Name)
	return nil
}
