// Package release installs the application package on the host from
// its git source via pip.
package release

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/imamik/botzner/internal/platform/host"
	"github.com/imamik/botzner/internal/provisioning"
	"github.com/imamik/botzner/internal/util/retry"
)

const phaseName = "release"

// stampFile records the installed ref in the data dir so re-applies
// of an unchanged pin skip the install.
const stampFile = ".botzner-release"

// Provisioner installs the package, pinned to the resolved remote
// head unless pinning is disabled.
type Provisioner struct {
	// resolveRef is swappable in tests.
	resolveRef func(source, branch string) (string, error)
}

// NewProvisioner creates the release phase.
func NewProvisioner() *Provisioner {
	return &Provisioner{resolveRef: ResolveRemoteHead}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string {
	return phaseName
}

// Provision implements provisioning.Phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	pkg := ctx.Config.Package
	step := fmt.Sprintf("package %s", pkg.Name)

	ref := pkg.Branch
	if pkg.Pinned() {
		sha, err := p.resolveRef(pkg.Source, pkg.Branch)
		if err != nil {
			return fmt.Errorf("failed to resolve %s@%s: %w", pkg.Source, pkg.Branch, err)
		}
		ctx.State.ResolvedRef = sha
		ref = sha

		if installed := p.installedRef(ctx); installed == sha {
			ctx.Report(phaseName, step, provisioning.StatusOK, fmt.Sprintf("%s already installed", shortRef(sha)))
			return nil
		}
	}

	if ctx.DryRun {
		ctx.Report(phaseName, step, provisioning.StatusWouldChange, fmt.Sprintf("would install %s", shortRef(ref)))
		return nil
	}

	requirement := PipURL(pkg.Source, ref)
	command := fmt.Sprintf("%s install --upgrade %s", pkg.Pip, host.Quote(requirement))

	// Installs pull from the network; transient failures are retried.
	err := retry.Do(ctx, func() error {
		_, runErr := ctx.Host.Run(ctx, command)
		return runErr
	}, retry.WithAttempts(3), retry.WithInitialDelay(5*time.Second))
	if err != nil {
		return fmt.Errorf("failed to install %s: %w", pkg.Name, err)
	}

	if pkg.Pinned() {
		if err := p.writeStamp(ctx, ctx.State.ResolvedRef); err != nil {
			return err
		}
	}

	ctx.Report(phaseName, step, provisioning.StatusChanged, fmt.Sprintf("installed %s", shortRef(ref)))
	return nil
}

// installedRef reads the release stamp, empty when absent.
func (p *Provisioner) installedRef(ctx *provisioning.Context) string {
	out, err := ctx.Host.Run(ctx, "cat "+host.Quote(p.stampPath(ctx)))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func (p *Provisioner) writeStamp(ctx *provisioning.Context, sha string) error {
	if err := ctx.Host.Upload(ctx, []byte(sha+"\n"), p.stampPath(ctx), "0644"); err != nil {
		return fmt.Errorf("failed to write release stamp: %w", err)
	}
	return nil
}

func (p *Provisioner) stampPath(ctx *provisioning.Context) string {
	return path.Join(ctx.Config.Service.DataDir, stampFile)
}

func shortRef(ref string) string {
	if len(ref) > 12 {
		return ref[:12]
	}
	return ref
}
