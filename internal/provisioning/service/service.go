// Package service manages the systemd lifecycle of the deployed unit.
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/imamik/botzner/internal/platform/host"
	"github.com/imamik/botzner/internal/provisioning"
	"github.com/imamik/botzner/internal/util/retry"
)

const phaseName = "service"

// Provisioner reloads unit definitions when needed, enables and
// starts the service, and restarts it so new code and config take
// effect.
type Provisioner struct{}

// NewProvisioner creates the service phase.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string {
	return phaseName
}

// Provision implements provisioning.Phase. The final restart is
// unconditional: every apply ends with the service freshly restarted.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	name := ctx.Config.Service.Name

	if ctx.State.UnitChanged {
		if err := p.daemonReload(ctx); err != nil {
			return err
		}
	}

	if err := p.ensureEnabled(ctx, name); err != nil {
		return err
	}
	if err := p.ensureStarted(ctx, name); err != nil {
		return err
	}
	return p.restart(ctx, name)
}

func (p *Provisioner) daemonReload(ctx *provisioning.Context) error {
	if ctx.DryRun {
		ctx.Report(phaseName, "daemon-reload", provisioning.StatusWouldChange, "unit drifted, would reload")
		return nil
	}
	if _, err := ctx.Host.Run(ctx, "systemctl daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload unit definitions: %w", err)
	}
	ctx.Report(phaseName, "daemon-reload", provisioning.StatusChanged, "unit definitions reloaded")
	return nil
}

func (p *Provisioner) ensureEnabled(ctx *provisioning.Context, name string) error {
	step := fmt.Sprintf("enable %s", name)

	out, err := ctx.Host.Run(ctx, "systemctl is-enabled "+host.Quote(name))
	if err == nil && strings.TrimSpace(out) == "enabled" {
		ctx.Report(phaseName, step, provisioning.StatusOK, "enabled")
		return nil
	}

	if ctx.DryRun {
		ctx.Report(phaseName, step, provisioning.StatusWouldChange, "would enable")
		return nil
	}

	if _, err := ctx.Host.Run(ctx, "systemctl enable "+host.Quote(name)); err != nil {
		return fmt.Errorf("failed to enable %s: %w", name, err)
	}
	ctx.Report(phaseName, step, provisioning.StatusChanged, "enabled")
	return nil
}

func (p *Provisioner) ensureStarted(ctx *provisioning.Context, name string) error {
	step := fmt.Sprintf("start %s", name)

	out, err := ctx.Host.Run(ctx, "systemctl is-active "+host.Quote(name))
	if err == nil && strings.TrimSpace(out) == "active" {
		ctx.Report(phaseName, step, provisioning.StatusOK, "running")
		return nil
	}

	if ctx.DryRun {
		ctx.Report(phaseName, step, provisioning.StatusWouldChange, "would start")
		return nil
	}

	err = retry.Do(ctx, func() error {
		_, runErr := ctx.Host.Run(ctx, "systemctl start "+host.Quote(name))
		return runErr
	}, retry.WithAttempts(3), retry.WithInitialDelay(2*time.Second))
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	ctx.Report(phaseName, step, provisioning.StatusChanged, "started")
	return nil
}

func (p *Provisioner) restart(ctx *provisioning.Context, name string) error {
	step := fmt.Sprintf("restart %s", name)

	if ctx.DryRun {
		ctx.Report(phaseName, step, provisioning.StatusWouldChange, "would restart")
		return nil
	}

	err := retry.Do(ctx, func() error {
		_, runErr := ctx.Host.Run(ctx, "systemctl restart "+host.Quote(name))
		return runErr
	}, retry.WithAttempts(3), retry.WithInitialDelay(2*time.Second))
	if err != nil {
		return fmt.Errorf("failed to restart %s: %w", name, err)
	}

	ctx.Report(phaseName, step, provisioning.StatusChanged, "restarted")
	return nil
}
