package prerequisites

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/botzner/internal/platform/host/hosttest"
)

func TestCheck_AllFound(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("command -v", "/usr/bin/tool", nil)

	results := Check(context.Background(), runner, DeployTools("pip3"))

	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
	assert.Len(t, results.Results, 6)
	for _, r := range results.Results {
		assert.True(t, r.Found, "tool %s should be found", r.Tool.Name)
	}
}

func TestCheck_RequiredMissing(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("command -v 'systemctl'", "", errors.New("exit status 1"))
	runner.Respond("command -v", "/usr/bin/tool", nil)

	results := Check(context.Background(), runner, DeployTools("pip3"))

	assert.True(t, results.HasErrors())
	err := results.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "systemctl")
}

func TestCheck_OptionalMissingIsNotAnError(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("command -v 'git'", "", errors.New("exit status 1"))
	runner.Respond("command -v", "/usr/bin/tool", nil)

	results := Check(context.Background(), runner, DeployTools("pip3"))

	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
	assert.Len(t, results.Missing, 1)
}

func TestDeployTools_UsesConfiguredPip(t *testing.T) {
	tools := DeployTools("pip3.11")
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "pip3.11")
}
