package orchestrator

import (
	"time"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// OrchestrationState is the run-level aggregate. It is owned by one
// run's Orchestrator and mutated only under its lock; concurrent runs
// get fully independent instances. Once the phase reaches Completion
// the state is frozen.
type OrchestrationState struct {
	// RunID identifies the orchestration run.
	RunID string
	// Phase is the current lifecycle stage.
	Phase models.Phase
	// Plan is the dispatch plan, immutable once execution begins.
	Plan models.DispatchPlan
	// Cursor is the index of the step currently (or last) executed.
	Cursor int
	// Results holds one slot per plan step; nil until the step has
	// been attempted.
	Results []*models.AgentExecutionResult
	// PendingApprovals are the undecided payment requests, refreshed
	// at every pass and tick.
	PendingApprovals []models.PaymentRequest
	// TotalBudget is the budget figure the ledger was seeded from.
	TotalBudget float64
	// StartedAt is when the run began.
	StartedAt time.Time
	// CompletedAt is when the run reached Completion.
	CompletedAt *time.Time
}

// Snapshot returns a deep copy safe to hand to other goroutines.
func (s *OrchestrationState) Snapshot() OrchestrationState {
	out := *s

	out.Plan.Steps = make([]models.PlanStep, len(s.Plan.Steps))
	for i, step := range s.Plan.Steps {
		out.Plan.Steps[i] = step
		out.Plan.Steps[i].Hints = append([]string(nil), step.Hints...)
	}

	out.Results = make([]*models.AgentExecutionResult, len(s.Results))
	for i, r := range s.Results {
		if r == nil {
			continue
		}
		cp := *r
		cp.Deliverables = append([]string(nil), r.Deliverables...)
		out.Results[i] = &cp
	}

	out.PendingApprovals = append([]models.PaymentRequest(nil), s.PendingApprovals...)

	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// FinalResults returns the recorded results in plan order, skipping
// steps that were never attempted.
func (s *OrchestrationState) FinalResults() []models.AgentExecutionResult {
	var out []models.AgentExecutionResult
	for _, r := range s.Results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
