// Package orchestrator walks the dispatch plan, routing every spend
// through guardrail validation, ledger reservation, and the approval
// gate, and aggregates the results into a final report.
package orchestrator

import (
	"time"

	"github.com/boardroom-dev/boardroom/internal/ledger"
	"github.com/boardroom-dev/boardroom/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventPlanBuilt indicates the dispatch plan has been constructed.
	EventPlanBuilt EventType = "plan_built"
	// EventStepStarted indicates a plan step has started execution.
	EventStepStarted EventType = "step_started"
	// EventStepCompleted indicates a plan step reached a final result.
	EventStepCompleted EventType = "step_completed"
	// EventStepDeferred indicates a plan step is waiting on an approval.
	EventStepDeferred EventType = "step_deferred"
	// EventApprovalRequested indicates a payment request awaits a decision.
	EventApprovalRequested EventType = "approval_requested"
	// EventApprovalResolved indicates a payment request reached a
	// terminal status and its reservation was settled.
	EventApprovalResolved EventType = "approval_resolved"
	// EventRunCompleted indicates the run reached Completion.
	EventRunCompleted EventType = "run_completed"
)

// Event is a progress event emitted as a run advances. Each event
// carries enough state for a caller to render progress without
// querying back into the orchestrator.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// RunID identifies the orchestration run.
	RunID string
	// Phase is the run phase at emission time.
	Phase models.Phase
	// StepIndex is the index of the related plan step, if applicable.
	StepIndex int
	// Domain is the directorate of the related step, if applicable.
	Domain models.Domain
	// Message provides additional context about the event.
	Message string
	// Request is a copy of the related payment request, if applicable.
	Request *models.PaymentRequest
	// Result is a copy of the related step result, if applicable.
	Result *models.AgentExecutionResult
	// TotalSpent is committed spend across all actors at emission time.
	TotalSpent float64
	// TotalRemaining is headroom across all actors at emission time.
	TotalRemaining float64
	// BudgetStatus classifies aggregate consumption at emission time.
	BudgetStatus ledger.BudgetStatus
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
