package models

// Well-known blocked reasons recorded on failed or deferred results.
const (
	// BlockedGuardrailDenied marks a step denied outright by policy.
	BlockedGuardrailDenied = "guardrail_denied"
	// BlockedInsufficientBudget marks a step that could not reserve funds.
	BlockedInsufficientBudget = "insufficient_budget"
	// BlockedApprovalPending marks a step deferred on a pending approval.
	BlockedApprovalPending = "approval_pending"
	// BlockedApprovalRejected marks a step whose approval was rejected.
	BlockedApprovalRejected = "approval_rejected"
	// BlockedApprovalExpired marks a step whose approval timed out.
	BlockedApprovalExpired = "approval_expired"
	// BlockedAgentFailure marks a step whose agent failed for domain reasons.
	BlockedAgentFailure = "agent_failure"
	// BlockedEmptyDeliverables marks a result downgraded during review
	// because it claimed success without producing anything.
	BlockedEmptyDeliverables = "empty_deliverables"
)

// AgentExecutionResult records the outcome of one plan step.
type AgentExecutionResult struct {
	// ActorID identifies the director that owned the step.
	ActorID string `json:"actor_id"`
	// Domain is the directorate the step belonged to.
	Domain Domain `json:"domain"`
	// Success indicates the step completed its work.
	Success bool `json:"success"`
	// Deliverables lists what the step produced.
	Deliverables []string `json:"deliverables,omitempty"`
	// CostIncurred is the total committed spend for the step, in dollars.
	CostIncurred float64 `json:"cost_incurred"`
	// BlockedReason is set when the step could not proceed.
	BlockedReason string `json:"blocked_reason,omitempty"`
}

// FinalReport is the consolidated outcome of a completed run.
type FinalReport struct {
	// RunID identifies the orchestration run.
	RunID string `json:"run_id"`
	// Summary is a one-line human-readable outcome.
	Summary string `json:"summary"`
	// Results are the per-step outcomes in plan order.
	Results []AgentExecutionResult `json:"results"`
	// PendingApprovals are requests still undecided at consolidation time.
	PendingApprovals []PaymentRequest `json:"pending_approvals,omitempty"`
	// TotalSpent is the committed spend across all actors.
	TotalSpent float64 `json:"total_spent"`
	// TotalRemaining is the unspent headroom across all actors.
	TotalRemaining float64 `json:"total_remaining"`
	// RiskFlags lists notable risk observations from the run.
	RiskFlags []string `json:"risk_flags,omitempty"`
}
