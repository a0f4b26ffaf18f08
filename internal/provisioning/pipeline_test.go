package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/platform/host/hosttest"
)

type stubPhase struct {
	name string
	err  error
	ran  *[]string
}

func (p *stubPhase) Name() string { return p.name }

func (p *stubPhase) Provision(_ *Context) error {
	*p.ran = append(*p.ran, p.name)
	return p.err
}

func newTestContext() *Context {
	cfg := &config.Config{
		Host:    config.HostConfig{Local: true},
		Package: config.PackageConfig{Source: "https://github.com/dbarashev/github_trending_bot.git"},
	}
	cfg.ApplyDefaults()
	return NewContext(context.Background(), cfg, hosttest.NewRunner())
}

func TestRunPhases_Order(t *testing.T) {
	var ran []string
	phases := []Phase{
		&stubPhase{name: "account", ran: &ran},
		&stubPhase{name: "layout", ran: &ran},
		&stubPhase{name: "service", ran: &ran},
	}

	require.NoError(t, RunPhases(newTestContext(), phases))
	assert.Equal(t, []string{"account", "layout", "service"}, ran)
}

func TestRunPhases_AbortsOnFirstFailure(t *testing.T) {
	var ran []string
	phases := []Phase{
		&stubPhase{name: "account", ran: &ran},
		&stubPhase{name: "layout", err: errors.New("mkdir denied"), ran: &ran},
		&stubPhase{name: "service", ran: &ran},
	}

	err := RunPhases(newTestContext(), phases)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout phase failed")
	assert.Equal(t, []string{"account", "layout"}, ran)
}

func TestContext_Report(t *testing.T) {
	ctx := newTestContext()

	ctx.Report("files", "file /etc/x", StatusChanged, "written")
	ctx.Report("files", "file /etc/y", StatusOK, "up to date")
	ctx.Report("files", "file /etc/z", StatusWouldChange, "would write")

	require.Len(t, ctx.State.Results, 3)
	assert.Equal(t, 1, ctx.State.Count(StatusChanged))
	assert.Equal(t, 1, ctx.State.Count(StatusOK))
	assert.Equal(t, 1, ctx.State.Count(StatusWouldChange))
}
