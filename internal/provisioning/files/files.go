// Package files converges the on-host files: the environment file,
// the systemd unit, and the write-once watermark seed.
package files

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/joho/godotenv"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/content"
	"github.com/imamik/botzner/internal/platform/host"
	"github.com/imamik/botzner/internal/provisioning"
)

const phaseName = "files"

// Provisioner converges the environment file, unit file and watermark.
type Provisioner struct{}

// NewProvisioner creates the files phase.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string {
	return phaseName
}

// Provision implements provisioning.Phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.ensureEnvironmentFile(ctx); err != nil {
		return err
	}
	if err := p.ensureUnitFile(ctx); err != nil {
		return err
	}
	if err := p.ensureWatermark(ctx); err != nil {
		return err
	}
	return p.ensureWatermarkOwner(ctx)
}

// ensureEnvironmentFile renders the environment map and converges the
// file on the host to it. systemd reads the file as root, so it stays
// root-owned and private.
func (p *Provisioner) ensureEnvironmentFile(ctx *provisioning.Context) error {
	rendered, err := RenderEnvironment(ctx.Config.Environment)
	if err != nil {
		return err
	}
	return convergeFile(ctx, ctx.Config.EnvironmentFilePath(), []byte(rendered), "0600")
}

// ensureUnitFile renders the canonical unit and converges the
// installed copy. Drift is flagged so the service phase reloads
// systemd's unit definitions.
func (p *Provisioner) ensureUnitFile(ctx *provisioning.Context) error {
	unit, err := UnitContent(ctx.Config)
	if err != nil {
		return err
	}
	path := ctx.Config.UnitFilePath()

	changed, err := convergeFileReport(ctx, path, []byte(unit), "0644")
	if err != nil {
		return err
	}
	if changed {
		ctx.State.UnitChanged = true
	}
	return nil
}

// ensureWatermark seeds the watermark only when absent. Existing
// content is never touched: the bot owns it from first run on.
func (p *Provisioner) ensureWatermark(ctx *provisioning.Context) error {
	path := ctx.Config.WatermarkPath()
	step := fmt.Sprintf("file %s", path)

	if _, err := ctx.Host.Run(ctx, "test -e "+host.Quote(path)); err == nil {
		ctx.Report(phaseName, step, provisioning.StatusOK, "already seeded")
		return nil
	}

	if ctx.DryRun {
		ctx.Report(phaseName, step, provisioning.StatusWouldChange, "would seed watermark")
		return nil
	}

	seed := ctx.Config.Watermark.Seed + "\n"
	if err := ctx.Host.Upload(ctx, []byte(seed), path, "0644"); err != nil {
		return fmt.Errorf("failed to seed watermark: %w", err)
	}

	ctx.Report(phaseName, step, provisioning.StatusChanged, fmt.Sprintf("seeded with %s", ctx.Config.Watermark.Seed))
	return nil
}

// ensureWatermarkOwner converges the watermark's owner to the service
// user so the bot can update it.
func (p *Provisioner) ensureWatermarkOwner(ctx *provisioning.Context) error {
	path := ctx.Config.WatermarkPath()
	owner := ctx.Config.Service.User
	step := fmt.Sprintf("owner of %s", path)

	if !ctx.DryRun {
		out, err := ctx.Host.Run(ctx, "stat -c %U "+host.Quote(path))
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if strings.TrimSpace(out) == owner {
			ctx.Report(phaseName, step, provisioning.StatusOK, owner)
			return nil
		}

		command := fmt.Sprintf("chown %s: %s", host.Quote(owner), host.Quote(path))
		if _, err := ctx.Host.Run(ctx, command); err != nil {
			return fmt.Errorf("failed to chown %s: %w", path, err)
		}
		ctx.Report(phaseName, step, provisioning.StatusChanged, fmt.Sprintf("chowned to %s", owner))
		return nil
	}

	// Dry run: the file may not exist yet, only probe.
	out, err := ctx.Host.Run(ctx, "stat -c %U "+host.Quote(path))
	if err == nil && strings.TrimSpace(out) == owner {
		ctx.Report(phaseName, step, provisioning.StatusOK, owner)
		return nil
	}
	ctx.Report(phaseName, step, provisioning.StatusWouldChange, fmt.Sprintf("would chown to %s", owner))
	return nil
}

// RenderEnvironment renders the environment map in dotenv format with
// stable key order.
func RenderEnvironment(env map[string]string) (string, error) {
	rendered, err := godotenv.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to render environment file: %w", err)
	}
	return rendered + "\n", nil
}

// UnitContent renders the canonical unit file for the configured service.
func UnitContent(cfg *config.Config) (string, error) {
	return content.UnitFile(content.UnitParams{
		Description:     "GitHub trending bot",
		User:            cfg.Service.User,
		EnvironmentFile: cfg.EnvironmentFilePath(),
		DataDir:         cfg.Service.DataDir,
		Exec:            cfg.Service.Name,
	})
}

// convergeFile is convergeFileReport without the caller caring about
// the change flag.
func convergeFile(ctx *provisioning.Context, path string, want []byte, mode string) error {
	_, err := convergeFileReport(ctx, path, want, mode)
	return err
}

// convergeFileReport compares the host file against want by checksum
// and rewrites it on drift. Reports the step and returns whether the
// file changed (or would change).
func convergeFileReport(ctx *provisioning.Context, path string, want []byte, mode string) (bool, error) {
	step := fmt.Sprintf("file %s", path)

	wantSum := sha256.Sum256(want)
	haveSum, exists := remoteSHA256(ctx, path)

	if exists && haveSum == hex.EncodeToString(wantSum[:]) {
		ctx.Report(phaseName, step, provisioning.StatusOK, "content up to date")
		return false, nil
	}

	detail := "written"
	if exists {
		detail = "content drifted, rewritten"
	}

	if ctx.DryRun {
		ctx.Report(phaseName, step, provisioning.StatusWouldChange, "would write")
		return true, nil
	}

	if err := ctx.Host.Upload(ctx, want, path, mode); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}

	ctx.Report(phaseName, step, provisioning.StatusChanged, detail)
	return true, nil
}

// remoteSHA256 returns the checksum of the host file, or exists=false
// when it cannot be read.
func remoteSHA256(ctx *provisioning.Context, path string) (string, bool) {
	out, err := ctx.Host.Run(ctx, "sha256sum "+host.Quote(path))
	if err != nil {
		return "", false
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}
