package layout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/platform/host/hosttest"
	"github.com/imamik/botzner/internal/provisioning"
)

func newContext(runner *hosttest.Runner) *provisioning.Context {
	cfg := &config.Config{
		Host:    config.HostConfig{Local: true},
		Package: config.PackageConfig{Source: "https://github.com/dbarashev/github_trending_bot.git"},
	}
	cfg.ApplyDefaults()
	return provisioning.NewContext(context.Background(), cfg, runner)
}

func TestProvision_AllPresent(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("stat -c %U", "github_trending_bot\n", nil)
	ctx := newContext(runner)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.False(t, runner.Ran("mkdir"))
	assert.False(t, runner.Ran("chown"))
	require.Len(t, ctx.State.Results, 2)
	for _, r := range ctx.State.Results {
		assert.Equal(t, provisioning.StatusOK, r.Status)
	}
}

func TestProvision_DirsMissing(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("test -d", "", errors.New("exit status 1"))
	ctx := newContext(runner)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, 2, runner.CountRuns("mkdir -p"))
	// Only the data dir is chowned to the service user.
	assert.Equal(t, 1, runner.CountRuns("chown"))
	assert.True(t, runner.Ran("mkdir -p '/var/lib/github_trending_bot'"))
	assert.True(t, runner.Ran("mkdir -p '/etc/github_trending_bot.d'"))
}

func TestProvision_OwnerDrifted(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("stat -c %U", "root\n", nil)
	ctx := newContext(runner)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.True(t, runner.Ran("chown 'github_trending_bot': '/var/lib/github_trending_bot'"))
	require.Len(t, ctx.State.Results, 2)
	assert.Equal(t, provisioning.StatusChanged, ctx.State.Results[0].Status)
	assert.Equal(t, provisioning.StatusOK, ctx.State.Results[1].Status)
}

func TestProvision_DryRun(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("test -d", "", errors.New("exit status 1"))
	ctx := newContext(runner)
	ctx.DryRun = true

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.False(t, runner.Ran("mkdir"))
	assert.False(t, runner.Ran("chown"))
	require.Len(t, ctx.State.Results, 2)
	for _, r := range ctx.State.Results {
		assert.Equal(t, provisioning.StatusWouldChange, r.Status)
	}
}
