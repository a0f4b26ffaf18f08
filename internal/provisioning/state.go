package provisioning

// Status classifies the outcome of a single provisioning step.
type Status string

const (
	// StatusOK means the host already matched the desired state.
	StatusOK Status = "ok"
	// StatusChanged means the host was mutated to match.
	StatusChanged Status = "changed"
	// StatusWouldChange means a dry run detected drift but did not mutate.
	StatusWouldChange Status = "would-change"
)

// StepResult records the outcome of one step for the run recap.
type StepResult struct {
	Phase  string
	Step   string
	Status Status
	Detail string
}

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// ResolvedRef is the pinned commit the release phase installed,
	// empty when pinning is disabled.
	ResolvedRef string

	// UnitChanged is set by the files phase when the installed unit
	// drifted; the service phase reloads unit definitions only then.
	UnitChanged bool

	// Results accumulates per-step outcomes in execution order.
	Results []StepResult
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}

// Count returns how many recorded steps have the given status.
func (s *State) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
