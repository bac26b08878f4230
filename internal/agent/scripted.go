package agent

import (
	"context"
	"fmt"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// ScriptedSpend is one pre-declared spend in a scripted step.
type ScriptedSpend struct {
	// Hint attributes the spend to the specialist owning that hint.
	// Empty means the director itself raises the spend.
	Hint string
	// PaymentType classifies the spend.
	PaymentType models.PaymentType
	// Amount is the spend in dollars.
	Amount float64
	// Description explains the spend.
	Description string
}

// Script declares the deterministic behavior of a scripted director.
type Script struct {
	// Spends are raised in order before deliverables are produced.
	Spends []ScriptedSpend
	// FailReason, when set, makes the step fail after its spends with
	// the given reason recorded.
	FailReason string
	// OmitDeliverables makes the step claim success with an empty
	// deliverables list, which the review phase must catch.
	OmitDeliverables bool
}

// ScriptedDirector executes a step from a fixed script. It backs tests
// and dry runs: plans can be rehearsed without an API key or real
// spend, while still exercising the full guardrail/ledger/approval
// pipeline.
type ScriptedDirector struct {
	domain models.Domain
	script Script
}

// NewScripted creates a scripted director for the domain.
func NewScripted(domain models.Domain, script Script) *ScriptedDirector {
	return &ScriptedDirector{domain: domain, script: script}
}

// Domain returns the directorate this director serves.
func (d *ScriptedDirector) Domain() models.Domain {
	return d.domain
}

// Execute runs the scripted step. Spends route through the toolbox like
// any real director's; a pending approval defers the step, and any
// denial fails it.
func (d *ScriptedDirector) Execute(ctx context.Context, self models.Actor, step models.PlanStep, tb Toolbox) (models.AgentExecutionResult, error) {
	result := models.AgentExecutionResult{
		ActorID: self.ID,
		Domain:  d.domain,
	}

	for _, spend := range d.script.Spends {
		actor := self
		if spend.Hint != "" {
			actor = NewSpecialistActor(self, spend.Hint)
			if !self.CanInvoke(actor) {
				return result, fmt.Errorf("%s actor %s cannot invoke specialist %s", self.Tier, self.ID, actor.ID)
			}
		}

		proceed, err := routeSpend(ctx, tb, actor, spend.PaymentType, spend.Amount, spend.Description, &result)
		if err != nil {
			return result, err
		}
		if !proceed {
			return result, nil
		}
	}

	if d.script.FailReason != "" {
		result.Success = false
		result.BlockedReason = models.BlockedAgentFailure
		return result, nil
	}

	result.Success = true
	if d.script.OmitDeliverables {
		return result, nil
	}

	result.Deliverables = append(result.Deliverables, fmt.Sprintf("%s operating plan", d.domain))
	for _, hint := range step.Hints {
		result.Deliverables = append(result.Deliverables, fmt.Sprintf("%s brief", hint))
	}
	return result, nil
}

// routeSpend sends one spend through the toolbox and folds the outcome
// into the step result. It returns false when the step must stop,
// either deferred on an approval or failed. The error is an invariant
// violation and must propagate.
func routeSpend(ctx context.Context, tb Toolbox, actor models.Actor, paymentType models.PaymentType, amount float64, description string, result *models.AgentExecutionResult) (bool, error) {
	outcome, err := tb.Spend(ctx, actor, paymentType, amount, description)
	if err != nil {
		return false, err
	}

	switch outcome.Status {
	case SpendCommitted:
		result.CostIncurred += amount
		return true, nil
	case SpendDenied:
		result.Success = false
		result.BlockedReason = models.BlockedGuardrailDenied
	case SpendInsufficient:
		result.Success = false
		result.BlockedReason = models.BlockedInsufficientBudget
	case SpendPending:
		result.Success = false
		result.BlockedReason = models.BlockedApprovalPending
	case SpendRejected:
		result.Success = false
		result.BlockedReason = models.BlockedApprovalRejected
	case SpendExpired:
		result.Success = false
		result.BlockedReason = models.BlockedApprovalExpired
	default:
		return false, fmt.Errorf("unhandled spend status %v", outcome.Status)
	}
	return false, nil
}
