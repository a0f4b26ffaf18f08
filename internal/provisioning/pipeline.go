package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes all provisioning phases sequentially. The first
// failing phase aborts the remaining sequence.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		LogPhaseStart(ctx.Observer, name)

		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, name, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
