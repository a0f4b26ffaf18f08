package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/botzner/internal/config"
)

// saveAndRestoreInitFactories saves and restores the init factory functions.
func saveAndRestoreInitFactories(t *testing.T) {
	origFileExists := fileExists
	origRunWizard := runWizard
	origWriteConfig := writeConfig

	t.Cleanup(func() {
		fileExists = origFileExists
		runWizard = origRunWizard
		writeConfig = origWriteConfig
	})
}

// captureOutput captures stdout during function execution.
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func wizardResult() *config.WizardResult {
	return &config.WizardResult{
		Address:       "203.0.113.7",
		SSHUser:       "root",
		PrivateKey:    "~/.ssh/id_ed25519",
		Source:        "https://github.com/dbarashev/github_trending_bot.git",
		Branch:        "master",
		TelegramToken: "tt",
		GithubToken:   "gh",
	}
}

func TestInit_WithInjection(t *testing.T) {
	saveAndRestoreInitFactories(t)

	t.Run("success flow - new file", func(t *testing.T) {
		fileExists = func(_ string) bool { return false }
		runWizard = func(_ context.Context) (*config.WizardResult, error) {
			return wizardResult(), nil
		}

		var written *config.Config
		writeConfig = func(cfg *config.Config, path string) error {
			written = cfg
			assert.Equal(t, "botzner.yaml", path)
			return nil
		}

		output := captureOutput(func() {
			require.NoError(t, Init(context.Background(), "botzner.yaml"))
		})

		require.NotNil(t, written)
		assert.Equal(t, "203.0.113.7", written.Host.Address)
		assert.Equal(t, "github_trending_bot", written.Service.Name)
		assert.Contains(t, output, "Configuration saved!")
		assert.Contains(t, output, "botzner apply")
		assert.NotContains(t, output, "already exists")
	})

	t.Run("existing file warns", func(t *testing.T) {
		fileExists = func(_ string) bool { return true }
		runWizard = func(_ context.Context) (*config.WizardResult, error) {
			return wizardResult(), nil
		}
		writeConfig = func(_ *config.Config, _ string) error { return nil }

		output := captureOutput(func() {
			require.NoError(t, Init(context.Background(), "botzner.yaml"))
		})

		assert.Contains(t, output, "already exists and will be overwritten")
	})

	t.Run("wizard error", func(t *testing.T) {
		fileExists = func(_ string) bool { return false }
		runWizard = func(_ context.Context) (*config.WizardResult, error) {
			return nil, errors.New("wizard canceled: user aborted")
		}

		_ = captureOutput(func() {
			err := Init(context.Background(), "botzner.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "wizard canceled")
		})
	})

	t.Run("write config error", func(t *testing.T) {
		fileExists = func(_ string) bool { return false }
		runWizard = func(_ context.Context) (*config.WizardResult, error) {
			return wizardResult(), nil
		}
		writeConfig = func(_ *config.Config, _ string) error {
			return errors.New("permission denied")
		}

		_ = captureOutput(func() {
			err := Init(context.Background(), "/readonly/botzner.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to write config")
		})
	})
}

func TestPrintInitSuccess(t *testing.T) {
	cfg := wizardResult().ToConfig()

	output := captureOutput(func() {
		printInitSuccess("botzner.yaml", cfg)
	})

	assert.Contains(t, output, "botzner.yaml")
	assert.Contains(t, output, "203.0.113.7")
	assert.Contains(t, output, "github_trending_bot")
	assert.Contains(t, output, "master")
	assert.Contains(t, output, "pinned to the resolved branch head")
	assert.Contains(t, output, "botzner apply --dry-run")
}
