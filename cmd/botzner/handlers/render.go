package handlers

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/provisioning"
)

// Colors for the run recap and doctor report.
var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#eab308")
	colorRed    = lipgloss.Color("#ef4444")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	changedStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	failStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

// stdoutIsTTY is a var so tests can force plain output.
var stdoutIsTTY = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// render applies a style only when stdout is a terminal, keeping CI
// logs free of escape sequences.
func render(style lipgloss.Style, s string) string {
	if !stdoutIsTTY() {
		return s
	}
	return style.Render(s)
}

// renderRecap produces the per-step summary printed after an apply.
func renderRecap(cfg *config.Config, state *provisioning.State, dryRun bool) string {
	var b strings.Builder

	title := fmt.Sprintf("  botzner apply: %s@%s", cfg.Service.Name, targetName(cfg))
	if dryRun {
		title += " (dry run)"
	}

	b.WriteString("\n")
	b.WriteString(render(titleStyle, title))
	b.WriteString("\n")
	b.WriteString(render(dimStyle, "  "+strings.Repeat("─", 50)))
	b.WriteString("\n")

	for _, r := range state.Results {
		var marker string
		switch r.Status {
		case provisioning.StatusOK:
			marker = render(okStyle, "ok     ")
		case provisioning.StatusChanged:
			marker = render(changedStyle, "changed")
		case provisioning.StatusWouldChange:
			marker = render(changedStyle, "drift  ")
		}
		fmt.Fprintf(&b, "  %s  %-9s %s", marker, r.Phase, r.Step)
		if r.Detail != "" {
			b.WriteString(render(dimStyle, "  ("+r.Detail+")"))
		}
		b.WriteString("\n")
	}

	b.WriteString(render(dimStyle, "  "+strings.Repeat("─", 50)))
	b.WriteString("\n")

	summary := fmt.Sprintf("  ok=%d changed=%d",
		state.Count(provisioning.StatusOK),
		state.Count(provisioning.StatusChanged))
	if dryRun {
		summary = fmt.Sprintf("  ok=%d would-change=%d",
			state.Count(provisioning.StatusOK),
			state.Count(provisioning.StatusWouldChange))
	}
	b.WriteString(render(sectionStyle, summary))
	b.WriteString("\n")

	if state.ResolvedRef != "" {
		b.WriteString(render(dimStyle, fmt.Sprintf("  pinned release: %s", state.ResolvedRef)))
		b.WriteString("\n")
	}

	return b.String()
}

func targetName(cfg *config.Config) string {
	if cfg.Host.Local {
		return "localhost"
	}
	return cfg.Host.Address
}
