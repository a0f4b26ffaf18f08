package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	Address       string
	SSHUser       string
	PrivateKey    string
	Source        string
	Branch        string
	TelegramToken string
	GithubToken   string
}

// RunWizard runs the interactive configuration wizard.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		// Defaults
		SSHUser:    DefaultSSHUser,
		PrivateKey: "~/.ssh/id_ed25519",
		Branch:     DefaultPackageBranch,
	}

	form := huh.NewForm(
		// Target host
		huh.NewGroup(
			huh.NewInput().
				Title("Host address").
				Description("Hostname or IP of the machine to provision").
				Placeholder("203.0.113.7").
				Value(&result.Address).
				Validate(validateAddress),

			huh.NewInput().
				Title("SSH user").
				Description("Login user; provisioning needs root or full sudo").
				Value(&result.SSHUser),

			huh.NewInput().
				Title("SSH private key").
				Description("Path to the key used to reach the host").
				Value(&result.PrivateKey),
		),

		// Application source
		huh.NewGroup(
			huh.NewInput().
				Title("Package source").
				Description("Git URL pip installs the bot from").
				Placeholder("https://github.com/you/github_trending_bot.git").
				Value(&result.Source).
				Validate(validateSource),

			huh.NewInput().
				Title("Branch").
				Description("Branch to deploy").
				Value(&result.Branch),
		),

		// Secrets for the environment file
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram token").
				Description("Written to the environment file as TELEGRAM_TOKEN").
				EchoMode(huh.EchoModePassword).
				Value(&result.TelegramToken),

			huh.NewInput().
				Title("GitHub token").
				Description("Written to the environment file as GITHUB_TOKEN").
				EchoMode(huh.EchoModePassword).
				Value(&result.GithubToken),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard result to a full Config with defaults applied.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Host: HostConfig{
			Address:    r.Address,
			User:       r.SSHUser,
			PrivateKey: r.PrivateKey,
		},
		Package: PackageConfig{
			Source: r.Source,
			Branch: r.Branch,
		},
		Environment: map[string]string{},
	}
	if r.TelegramToken != "" {
		cfg.Environment["TELEGRAM_TOKEN"] = r.TelegramToken
	}
	if r.GithubToken != "" {
		cfg.Environment["GITHUB_TOKEN"] = r.GithubToken
	}
	cfg.ApplyDefaults()
	return cfg
}

func validateAddress(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("host address is required")
	}
	if strings.ContainsAny(s, " \t") {
		return fmt.Errorf("host address cannot contain whitespace")
	}
	return nil
}

func validateSource(s string) error {
	if s == "" {
		return fmt.Errorf("package source is required")
	}
	if !validSource(s) {
		return fmt.Errorf("expected an http(s), ssh or git URL")
	}
	return nil
}
