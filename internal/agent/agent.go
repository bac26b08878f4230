// Package agent implements the tier-2 domain directors and the tier-3
// specialists they invoke. Directors never touch the ledger or the
// approval gate directly: every spend goes through the Toolbox the
// orchestrator hands them, which enforces guardrails, reservations, and
// approvals in one place.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// SpendStatus is the outcome class of a routed spend request.
type SpendStatus int

const (
	// SpendCommitted means the spend was authorized and funds committed.
	SpendCommitted SpendStatus = iota
	// SpendDenied means guardrail policy denied the spend outright.
	SpendDenied
	// SpendInsufficient means the ledger could not cover the spend.
	SpendInsufficient
	// SpendPending means the spend awaits a human approval decision.
	SpendPending
	// SpendRejected means a human rejected the spend.
	SpendRejected
	// SpendExpired means the approval request timed out undecided.
	SpendExpired
)

// String returns a human-readable representation of the spend status.
func (s SpendStatus) String() string {
	switch s {
	case SpendCommitted:
		return "committed"
	case SpendDenied:
		return "denied"
	case SpendInsufficient:
		return "insufficient"
	case SpendPending:
		return "pending"
	case SpendRejected:
		return "rejected"
	case SpendExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// SpendOutcome is the result of routing one spend request.
type SpendOutcome struct {
	// Status classifies the outcome.
	Status SpendStatus
	// Reason explains denials and rejections.
	Reason string
	// RequestID is the payment request ID when Status is SpendPending,
	// SpendRejected, or SpendExpired.
	RequestID string
}

// Toolbox is the spend surface the orchestrator provides to a director
// for the duration of one step. Spend is idempotent with respect to
// identical requests within a run: re-issuing a request that is waiting
// on (or resolved by) a human decision returns the current outcome
// instead of raising a duplicate.
type Toolbox interface {
	// Spend routes a payment request through validation, reservation,
	// and the approval gate. The returned error is reserved for
	// invariant violations; business denials come back in the outcome.
	Spend(ctx context.Context, actor models.Actor, paymentType models.PaymentType, amount float64, description string) (SpendOutcome, error)
}

// Director executes one plan step for its domain, invoking specialists
// for the step's hints.
type Director interface {
	// Domain returns the directorate this director serves.
	Domain() models.Domain
	// Execute runs the step as the given actor and returns its result.
	// The error is reserved for invariant violations; domain failures
	// are recorded on the result.
	Execute(ctx context.Context, self models.Actor, step models.PlanStep, tb Toolbox) (models.AgentExecutionResult, error)
}

// Registry resolves the director for each domain. The domain set is
// small and fixed, so directors are bound through an exhaustive switch
// at construction time rather than open-ended registration.
type Registry struct {
	directors map[models.Domain]Director
}

// NewRegistry builds a registry from the given directors. Duplicate
// domains are a programming error.
func NewRegistry(directors ...Director) (*Registry, error) {
	r := &Registry{directors: make(map[models.Domain]Director)}
	for _, d := range directors {
		if _, dup := r.directors[d.Domain()]; dup {
			return nil, fmt.Errorf("duplicate director for domain %s", d.Domain())
		}
		r.directors[d.Domain()] = d
	}
	return r, nil
}

// Director returns the director for the domain.
func (r *Registry) Director(domain models.Domain) (Director, error) {
	d, ok := r.directors[domain]
	if !ok {
		return nil, fmt.Errorf("no director for domain %s", domain)
	}
	return d, nil
}

// NewExecutiveActor creates the tier-1 actor identity that owns a run.
// The executive operates in Strategy, its own domain.
func NewExecutiveActor() models.Actor {
	return models.Actor{
		ID:     fmt.Sprintf("exec-%s", uuid.New().String()[:8]),
		Tier:   models.TierExecutive,
		Domain: models.DomainStrategy,
	}
}

// NewDirectorActor creates the tier-2 actor identity for a directorate.
func NewDirectorActor(domain models.Domain) models.Actor {
	return models.Actor{
		ID:     fmt.Sprintf("dir-%s-%s", domain, uuid.New().String()[:8]),
		Tier:   models.TierDirector,
		Domain: domain,
	}
}

// NewSpecialistActor creates a tier-3 actor identity within the
// director's own domain. Specialists never operate outside the domain
// of the director that spawned them.
func NewSpecialistActor(director models.Actor, hint string) models.Actor {
	return models.Actor{
		ID:     fmt.Sprintf("spec-%s-%s-%s", director.Domain, hint, uuid.New().String()[:8]),
		Tier:   models.TierSpecialist,
		Domain: director.Domain,
	}
}
