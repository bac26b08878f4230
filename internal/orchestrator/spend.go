package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/boardroom-dev/boardroom/internal/agent"
	"github.com/boardroom-dev/boardroom/internal/ledger"
	"github.com/boardroom-dev/boardroom/pkg/models"
)

// stepToolbox is the agent.Toolbox handed to the director executing one
// plan step. All spends in a step are charged against that step's
// director allocation, whichever actor raises them.
type stepToolbox struct {
	o         *Orchestrator
	stepIndex int
	director  models.Actor
}

// Spend implements agent.Toolbox.
func (t *stepToolbox) Spend(ctx context.Context, actor models.Actor, paymentType models.PaymentType, amount float64, description string) (agent.SpendOutcome, error) {
	return t.o.routeSpend(ctx, t.stepIndex, t.director, actor, paymentType, amount, description)
}

// pendingSpend tracks the reservation held for an undecided payment
// request so it can be committed or released when the decision lands.
type pendingSpend struct {
	key           string
	stepIndex     int
	reservationID string
}

// spendKey identifies one logical spend within a run by its ordinal in
// the step's spend sequence. Deferred steps re-execute from the top and
// re-issue their spends in the same order, so the ordinal is stable
// across attempts and a re-issued spend resolves to its memoized
// outcome instead of reserving twice. Keying by value would conflate
// distinct spends that happen to share parameters.
func spendKey(stepIndex, ordinal int) string {
	return fmt.Sprintf("%d|%d", stepIndex, ordinal)
}

// routeSpend runs the spend pipeline: guardrail validation, ledger
// reservation, then auto-commit or approval gating. Business denials
// come back in the outcome; the returned error is reserved for
// invariant violations.
func (o *Orchestrator) routeSpend(_ context.Context, stepIndex int, director, actor models.Actor, paymentType models.PaymentType, amount float64, description string) (agent.SpendOutcome, error) {
	o.spendMu.Lock()
	defer o.spendMu.Unlock()

	key := spendKey(stepIndex, o.spendSeq[stepIndex])
	o.spendSeq[stepIndex]++

	if memo, ok := o.spendMemo[key]; ok {
		if memo.Status != agent.SpendPending {
			return memo, nil
		}
		// A pending spend is re-issued on step re-attempt; settle it
		// if a decision has landed since.
		outcome, err := o.settleLocked(memo.RequestID)
		if err != nil {
			return agent.SpendOutcome{}, err
		}
		return outcome, nil
	}

	stepDomain := o.stepDomain(stepIndex)

	decision := o.validator.Evaluate(actor, stepDomain, paymentType, amount, description)
	if !decision.Allowed {
		o.logger.Log("spend denied for %s: %s", actor.ID, decision.Reason)
		outcome := agent.SpendOutcome{Status: agent.SpendDenied, Reason: decision.Reason}
		o.spendMemo[key] = outcome
		return outcome, nil
	}

	reservationID, err := o.ledger.Reserve(director.ID, amount)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBudget) {
			outcome := agent.SpendOutcome{Status: agent.SpendInsufficient, Reason: err.Error()}
			o.spendMemo[key] = outcome
			return outcome, nil
		}
		// Unknown actor or invalid amount past validation means the
		// call ordering is broken.
		return agent.SpendOutcome{}, fmt.Errorf("reserve for step %d: %w", stepIndex, err)
	}

	if !decision.RequiresApproval {
		if err := o.ledger.Commit(reservationID); err != nil {
			return agent.SpendOutcome{}, fmt.Errorf("commit for step %d: %w", stepIndex, err)
		}
		outcome := agent.SpendOutcome{Status: agent.SpendCommitted}
		o.spendMemo[key] = outcome
		return outcome, nil
	}

	req := o.gate.Request(actor.ID, paymentType, amount, description, decision.RiskLevel)
	o.pendingSpends[req.ID] = pendingSpend{
		key:           key,
		stepIndex:     stepIndex,
		reservationID: reservationID,
	}
	outcome := agent.SpendOutcome{
		Status:    agent.SpendPending,
		Reason:    decision.Reason,
		RequestID: req.ID,
	}
	o.spendMemo[key] = outcome

	o.logger.Log("approval requested: %s %s %v (%s)", req.ID, paymentType, amount, decision.Reason)
	o.emit(o.newEvent(EventApprovalRequested, func(e *Event) {
		e.StepIndex = stepIndex
		e.Domain = stepDomain
		e.Request = &req
		e.Message = decision.Reason
	}))
	return outcome, nil
}

// settleLocked checks one tracked pending spend against the gate and,
// if a terminal decision has landed, commits or releases its
// reservation and updates the memo. Must be called with spendMu held.
func (o *Orchestrator) settleLocked(requestID string) (agent.SpendOutcome, error) {
	ps, tracked := o.pendingSpends[requestID]
	if !tracked {
		// Already settled by an earlier tick or re-attempt.
		key := o.memoKeyFor(requestID)
		if key == "" {
			return agent.SpendOutcome{}, fmt.Errorf("settle %s: no tracked spend", requestID)
		}
		return o.spendMemo[key], nil
	}

	req, err := o.gate.Get(requestID)
	if err != nil {
		return agent.SpendOutcome{}, fmt.Errorf("settle %s: %w", requestID, err)
	}

	var outcome agent.SpendOutcome
	switch req.Status {
	case models.PaymentPending:
		return o.spendMemo[ps.key], nil
	case models.PaymentApproved:
		if err := o.ledger.Commit(ps.reservationID); err != nil {
			return agent.SpendOutcome{}, fmt.Errorf("commit approved spend %s: %w", requestID, err)
		}
		outcome = agent.SpendOutcome{Status: agent.SpendCommitted, RequestID: requestID}
	case models.PaymentRejected:
		if err := o.ledger.Release(ps.reservationID); err != nil {
			return agent.SpendOutcome{}, fmt.Errorf("release rejected spend %s: %w", requestID, err)
		}
		outcome = agent.SpendOutcome{Status: agent.SpendRejected, Reason: req.DecisionReason, RequestID: requestID}
	case models.PaymentExpired:
		if err := o.ledger.Release(ps.reservationID); err != nil {
			return agent.SpendOutcome{}, fmt.Errorf("release expired spend %s: %w", requestID, err)
		}
		outcome = agent.SpendOutcome{Status: agent.SpendExpired, Reason: "approval window elapsed", RequestID: requestID}
	default:
		return agent.SpendOutcome{}, fmt.Errorf("settle %s: unknown status %q", requestID, req.Status)
	}

	o.spendMemo[ps.key] = outcome
	delete(o.pendingSpends, requestID)

	o.logger.Log("approval resolved: %s -> %s", requestID, req.Status)
	o.emit(o.newEvent(EventApprovalResolved, func(e *Event) {
		e.StepIndex = ps.stepIndex
		e.Domain = o.stepDomain(ps.stepIndex)
		e.Request = &req
	}))
	return outcome, nil
}

// memoKeyFor finds the memo key carrying the given request ID. Used
// when a spend was settled before the caller re-issued it.
func (o *Orchestrator) memoKeyFor(requestID string) string {
	for key, outcome := range o.spendMemo {
		if outcome.RequestID == requestID {
			return key
		}
	}
	return ""
}

// stepDomain returns the directorate of a plan step.
func (o *Orchestrator) stepDomain(stepIndex int) models.Domain {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if stepIndex < 0 || stepIndex >= len(o.state.Plan.Steps) {
		return ""
	}
	return o.state.Plan.Steps[stepIndex].ActorDomain
}
