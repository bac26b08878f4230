package models

// IntentFlags is the parsed intent handed to the planner: one boolean
// per directorate plus the specialist hints the parser extracted.
// Producing these flags from natural language is the caller's problem;
// the planner only consumes them.
type IntentFlags struct {
	// Finance requests the finance directorate.
	Finance bool `json:"finance"`
	// Legal requests the legal directorate.
	Legal bool `json:"legal"`
	// Security requests the security directorate.
	Security bool `json:"security"`
	// Engineering requests the engineering directorate.
	Engineering bool `json:"engineering"`
	// Research requests the research directorate.
	Research bool `json:"research"`
	// Marketing requests the marketing directorate.
	Marketing bool `json:"marketing"`
	// Hints are tier-3 specialist hints (e.g. "branding", "web").
	// Each hint is attached to the directorate that owns it; hints
	// whose directorate is not requested are dropped.
	Hints []string `json:"hints,omitempty"`
}

// Any returns true if at least one directorate is requested.
func (f IntentFlags) Any() bool {
	return f.Finance || f.Legal || f.Security || f.Engineering ||
		f.Research || f.Marketing
}

// PlanStep is one entry in a dispatch plan: a directorate to invoke and
// the specialist hints it should carry.
type PlanStep struct {
	// ActorDomain is the directorate invoked by this step.
	ActorDomain Domain `json:"actor_domain"`
	// Hints are the tier-3 specialist hints for this step, sorted.
	Hints []string `json:"hints,omitempty"`
}

// DispatchPlan is the ordered sequence of directorate invocations for
// one run. It is built once and never mutated after execution begins;
// re-planning requires a new run.
type DispatchPlan struct {
	// Steps are the plan entries in execution order.
	Steps []PlanStep `json:"steps"`
}

// Phase is the lifecycle stage of an orchestration run.
type Phase string

const (
	// PhaseAnalysis covers intent analysis before planning.
	PhaseAnalysis Phase = "analysis"
	// PhasePlanning covers plan construction and ledger seeding.
	PhasePlanning Phase = "planning"
	// PhaseExecution covers walking the plan. The run stays here while
	// any payment approval is outstanding.
	PhaseExecution Phase = "execution"
	// PhaseReview covers deliverable completeness checks.
	PhaseReview Phase = "review"
	// PhaseCompletion is the frozen terminal state.
	PhaseCompletion Phase = "completion"
)

// Valid returns true if the phase is a known value.
func (p Phase) Valid() bool {
	switch p {
	case PhaseAnalysis, PhasePlanning, PhaseExecution, PhaseReview, PhaseCompletion:
		return true
	default:
		return false
	}
}
