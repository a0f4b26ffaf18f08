package account

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

func TestProvision_UserExists(t *testing.T) {
	runner := hosttest.NewRunner()
	ctx := newContext(runner)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.True(t, runner.Ran("getent passwd"))
	assert.False(t, runner.Ran("useradd"))
	require.Len(t, ctx.State.Results, 1)
	assert.Equal(t, provisioning.StatusOK, ctx.State.Results[0].Status)
}

func TestProvision_UserCreated(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("getent passwd", "", errors.New("exit status 2"))
	ctx := newContext(runner)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.True(t, runner.Ran("useradd --system"))
	assert.True(t, runner.Ran("--shell /usr/sbin/nologin"))
	require.Len(t, ctx.State.Results, 1)
	assert.Equal(t, provisioning.StatusChanged, ctx.State.Results[0].Status)
}

func TestProvision_DryRun(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("getent passwd", "", errors.New("exit status 2"))
	ctx := newContext(runner)
	ctx.DryRun = true

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.False(t, runner.Ran("useradd"))
	require.Len(t, ctx.State.Results, 1)
	assert.Equal(t, provisioning.StatusWouldChange, ctx.State.Results[0].Status)
}

func TestProvision_UseraddFails(t *testing.T) {
	runner := hosttest.NewRunner()
	runner.Respond("getent passwd", "", errors.New("exit status 2"))
	runner.Respond("useradd", "", errors.New("exit status 1"))
	ctx := newContext(runner)

	err := NewProvisioner().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create user")
}
