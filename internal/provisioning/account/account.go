// Package account ensures the service's system user exists.
package account

import (
	"fmt"

	"github.com/imamik/botzner/internal/platform/host"
	"github.com/imamik/botzner/internal/provisioning"
)

const phaseName = "account"

// Provisioner ensures the system user the service runs as.
type Provisioner struct{}

// NewProvisioner creates the account phase.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string {
	return phaseName
}

// Provision implements provisioning.Phase. The user is a system
// account without a login shell; an existing account is left as is.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	user := ctx.Config.Service.User
	step := fmt.Sprintf("user %s", user)

	if _, err := ctx.Host.Run(ctx, "getent passwd "+host.Quote(user)); err == nil {
		ctx.Report(phaseName, step, provisioning.StatusOK, "already exists")
		return nil
	}

	if ctx.DryRun {
		ctx.Report(phaseName, step, provisioning.StatusWouldChange, "would create system user")
		return nil
	}

	command := fmt.Sprintf("useradd --system --no-create-home --home-dir %s --shell /usr/sbin/nologin %s",
		host.Quote(ctx.Config.Service.DataDir), host.Quote(user))
	if _, err := ctx.Host.Run(ctx, command); err != nil {
		return fmt.Errorf("failed to create user %s: %w", user, err)
	}

	ctx.Report(phaseName, step, provisioning.StatusChanged, "created system user")
	return nil
}
