package provisioning

import (
	"context"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/platform/host"
)

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Host     host.Runner
	Observer Observer

	// DryRun makes phases probe and report without mutating the host.
	DryRun bool
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, cfg *config.Config, runner host.Runner) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Host:     runner,
		Observer: NewConsoleObserver(),
	}
}

// Report records a step outcome in the run state and emits the
// matching observer event.
func (c *Context) Report(phase, step string, status Status, detail string) {
	c.State.Results = append(c.State.Results, StepResult{
		Phase:  phase,
		Step:   step,
		Status: status,
		Detail: detail,
	})

	eventType := EventResourceOK
	switch status {
	case StatusChanged:
		eventType = EventResourceChanged
	case StatusWouldChange:
		eventType = EventResourceWouldChange
	}

	c.Observer.Event(Event{
		Type:     eventType,
		Phase:    phase,
		Resource: step,
		Message:  detail,
	})
}
