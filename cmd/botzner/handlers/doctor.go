package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/platform/host"
	"github.com/imamik/botzner/internal/provisioning/files"
	"github.com/imamik/botzner/internal/util/prerequisites"
)

// DoctorStatus represents the host diagnostic status.
type DoctorStatus struct {
	Target          string          `json:"target"`
	Connected       bool            `json:"connected"`
	Tools           []ToolHealth    `json:"tools,omitempty"`
	User            bool            `json:"user"`
	DataDir         bool            `json:"dataDir"`
	ConfigDir       bool            `json:"configDir"`
	EnvironmentFile FileHealth      `json:"environmentFile"`
	UnitFile        FileHealth      `json:"unitFile"`
	Watermark       WatermarkHealth `json:"watermark"`
	Package         PackageHealth   `json:"package"`
	Service         ServiceHealth   `json:"service"`
}

// ToolHealth reports availability of one host tool.
type ToolHealth struct {
	Name     string `json:"name"`
	Found    bool   `json:"found"`
	Required bool   `json:"required"`
}

// FileHealth reports presence and content sync of a managed file.
type FileHealth struct {
	Present bool `json:"present"`
	InSync  bool `json:"inSync"`
}

// WatermarkHealth reports the seeded watermark state.
type WatermarkHealth struct {
	Present bool   `json:"present"`
	Owner   string `json:"owner,omitempty"`
	Value   string `json:"value,omitempty"`
}

// PackageHealth reports whether the application package is installed.
type PackageHealth struct {
	Installed bool   `json:"installed"`
	Ref       string `json:"ref,omitempty"`
}

// ServiceHealth reports the systemd unit state.
type ServiceHealth struct {
	Enabled bool `json:"enabled"`
	Active  bool `json:"active"`
}

// Healthy reports whether every required piece of state is in place.
func (s *DoctorStatus) Healthy() bool {
	if !s.Connected || !s.User || !s.DataDir || !s.ConfigDir {
		return false
	}
	if !s.EnvironmentFile.Present || !s.EnvironmentFile.InSync {
		return false
	}
	if !s.UnitFile.Present || !s.UnitFile.InSync {
		return false
	}
	if !s.Watermark.Present {
		return false
	}
	if !s.Package.Installed {
		return false
	}
	if !s.Service.Active {
		return false
	}
	for _, tool := range s.Tools {
		if tool.Required && !tool.Found {
			return false
		}
	}
	return true
}

// Doctor diagnoses the target host against the configuration and
// renders a report. Returns an error when required state is missing so
// the exit code is usable in checks.
func Doctor(ctx context.Context, configPath string, jsonOut bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	runner, cleanup, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	status := diagnose(ctx, cfg, runner)

	if jsonOut {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(renderDoctor(status))
	}

	if !status.Healthy() {
		return fmt.Errorf("host %s is not converged; run 'botzner apply'", status.Target)
	}
	return nil
}

// diagnose probes the host for every piece of managed state.
func diagnose(ctx context.Context, cfg *config.Config, runner host.Runner) *DoctorStatus {
	status := &DoctorStatus{Target: targetName(cfg)}

	if _, err := runner.Run(ctx, "true"); err != nil {
		return status
	}
	status.Connected = true

	for _, r := range checkPrereqs(ctx, runner, prerequisites.DeployTools(cfg.Package.Pip)).Results {
		status.Tools = append(status.Tools, ToolHealth{
			Name:     r.Tool.Name,
			Found:    r.Found,
			Required: r.Tool.Required,
		})
	}

	_, err := runner.Run(ctx, "getent passwd "+host.Quote(cfg.Service.User))
	status.User = err == nil

	_, err = runner.Run(ctx, "test -d "+host.Quote(cfg.Service.DataDir))
	status.DataDir = err == nil
	_, err = runner.Run(ctx, "test -d "+host.Quote(cfg.Service.ConfigDir))
	status.ConfigDir = err == nil

	if env, err := files.RenderEnvironment(cfg.Environment); err == nil {
		status.EnvironmentFile = fileHealth(ctx, runner, cfg.EnvironmentFilePath(), env)
	}
	if unit, err := files.UnitContent(cfg); err == nil {
		status.UnitFile = fileHealth(ctx, runner, cfg.UnitFilePath(), unit)
	}

	if out, err := runner.Run(ctx, "cat "+host.Quote(cfg.WatermarkPath())); err == nil {
		status.Watermark.Present = true
		status.Watermark.Value = strings.TrimSpace(out)
	}
	if out, err := runner.Run(ctx, "stat -c %U "+host.Quote(cfg.WatermarkPath())); err == nil {
		status.Watermark.Owner = strings.TrimSpace(out)
	}

	_, err = runner.Run(ctx, fmt.Sprintf("%s show %s", cfg.Package.Pip, host.Quote(cfg.Package.Name)))
	status.Package.Installed = err == nil
	stampPath := cfg.Service.DataDir + "/.botzner-release"
	if out, err := runner.Run(ctx, "cat "+host.Quote(stampPath)); err == nil {
		status.Package.Ref = strings.TrimSpace(out)
	}

	out, err := runner.Run(ctx, "systemctl is-enabled "+host.Quote(cfg.Service.Name))
	status.Service.Enabled = err == nil && strings.TrimSpace(out) == "enabled"
	out, err = runner.Run(ctx, "systemctl is-active "+host.Quote(cfg.Service.Name))
	status.Service.Active = err == nil && strings.TrimSpace(out) == "active"

	return status
}

// fileHealth compares the host file against the desired content.
func fileHealth(ctx context.Context, runner host.Runner, path, want string) FileHealth {
	out, err := runner.Run(ctx, "sha256sum "+host.Quote(path))
	if err != nil {
		return FileHealth{}
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return FileHealth{}
	}
	wantSum := sha256.Sum256([]byte(want))
	return FileHealth{
		Present: true,
		InSync:  fields[0] == hex.EncodeToString(wantSum[:]),
	}
}

// renderDoctor produces the human-readable diagnostic report.
func renderDoctor(status *DoctorStatus) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(render(titleStyle, fmt.Sprintf("  botzner doctor: %s", status.Target)))
	b.WriteString("\n")
	b.WriteString(render(dimStyle, "  "+strings.Repeat("─", 50)))
	b.WriteString("\n")

	if !status.Connected {
		b.WriteString(checkLine(false, "host reachable"))
		return b.String()
	}
	b.WriteString(checkLine(true, "host reachable"))

	missing := 0
	for _, tool := range status.Tools {
		if tool.Required && !tool.Found {
			b.WriteString(checkLine(false, fmt.Sprintf("tool %s", tool.Name)))
			missing++
		}
	}
	if missing == 0 {
		b.WriteString(checkLine(true, "required host tools"))
	}

	b.WriteString(checkLine(status.User, "service user"))
	b.WriteString(checkLine(status.DataDir, "data directory"))
	b.WriteString(checkLine(status.ConfigDir, "config directory"))
	b.WriteString(fileLine(status.EnvironmentFile, "environment file"))
	b.WriteString(fileLine(status.UnitFile, "unit file"))

	watermark := "watermark"
	if status.Watermark.Present {
		watermark = fmt.Sprintf("watermark (value %s, owner %s)", status.Watermark.Value, status.Watermark.Owner)
	}
	b.WriteString(checkLine(status.Watermark.Present, watermark))

	pkg := "package installed"
	if status.Package.Ref != "" {
		ref := status.Package.Ref
		if len(ref) > 12 {
			ref = ref[:12]
		}
		pkg = fmt.Sprintf("package installed (ref %s)", ref)
	}
	b.WriteString(checkLine(status.Package.Installed, pkg))

	b.WriteString(checkLine(status.Service.Enabled, "service enabled"))
	b.WriteString(checkLine(status.Service.Active, "service active"))

	b.WriteString(render(dimStyle, "  "+strings.Repeat("─", 50)))
	b.WriteString("\n")
	if status.Healthy() {
		b.WriteString(render(okStyle, "  Host is converged."))
	} else {
		b.WriteString(render(failStyle, "  Host is not converged."))
	}
	b.WriteString("\n")

	return b.String()
}

func checkLine(ok bool, label string) string {
	if ok {
		return fmt.Sprintf("  %s %s\n", render(okStyle, "✓"), label)
	}
	return fmt.Sprintf("  %s %s\n", render(failStyle, "✗"), label)
}

func fileLine(health FileHealth, label string) string {
	switch {
	case health.Present && health.InSync:
		return checkLine(true, label)
	case health.Present:
		return fmt.Sprintf("  %s %s\n", render(changedStyle, "~"), label+" (content drifted)")
	default:
		return checkLine(false, label)
	}
}
