// Package layout ensures the service's directories exist with the
// right ownership.
package layout

import (
	"fmt"
	"strings"

	"github.com/imamik/botzner/internal/platform/host"
	"github.com/imamik/botzner/internal/provisioning"
)

const phaseName = "layout"

// Provisioner ensures the data and config directories.
type Provisioner struct{}

// NewProvisioner creates the layout phase.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string {
	return phaseName
}

// Provision implements provisioning.Phase. The data dir belongs to the
// service user (the bot writes its watermark there); the config dir
// stays root-owned.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := ensureDir(ctx, ctx.Config.Service.DataDir, ctx.Config.Service.User); err != nil {
		return err
	}
	return ensureDir(ctx, ctx.Config.Service.ConfigDir, "")
}

// ensureDir creates dir if missing and converges its owner when one
// is given.
func ensureDir(ctx *provisioning.Context, dir, owner string) error {
	step := fmt.Sprintf("directory %s", dir)

	exists := true
	if _, err := ctx.Host.Run(ctx, "test -d "+host.Quote(dir)); err != nil {
		exists = false
	}

	ownerOK := true
	if exists && owner != "" {
		out, err := ctx.Host.Run(ctx, "stat -c %U "+host.Quote(dir))
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", dir, err)
		}
		ownerOK = strings.TrimSpace(out) == owner
	}

	if exists && ownerOK {
		ctx.Report(phaseName, step, provisioning.StatusOK, "present")
		return nil
	}

	if ctx.DryRun {
		detail := "would create"
		if exists {
			detail = fmt.Sprintf("would chown to %s", owner)
		}
		ctx.Report(phaseName, step, provisioning.StatusWouldChange, detail)
		return nil
	}

	if !exists {
		if _, err := ctx.Host.Run(ctx, "mkdir -p "+host.Quote(dir)); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if owner != "" {
		command := fmt.Sprintf("chown %s: %s", host.Quote(owner), host.Quote(dir))
		if _, err := ctx.Host.Run(ctx, command); err != nil {
			return fmt.Errorf("failed to chown %s: %w", dir, err)
		}
	}

	detail := "created"
	if exists {
		detail = fmt.Sprintf("chowned to %s", owner)
	}
	ctx.Report(phaseName, step, provisioning.StatusChanged, detail)
	return nil
}
