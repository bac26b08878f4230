package guardrail

import (
	"fmt"
	"strings"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// Decision is the validator's verdict on a requested action or spend.
type Decision struct {
	// Allowed indicates the action may proceed at all.
	Allowed bool
	// RequiresApproval indicates the spend needs a human decision
	// before funds are committed.
	RequiresApproval bool
	// RiskLevel classifies the spend.
	RiskLevel models.RiskLevel
	// Reason explains denials and approval requirements.
	Reason string
}

// BudgetView is the read-only ledger surface the validator consults for
// risk classification.
type BudgetView interface {
	// TotalRemaining returns unreserved headroom across all actors.
	TotalRemaining() float64
}

// Validator evaluates actions against the rule tables and current
// budget state. It holds no mutable state of its own.
type Validator struct {
	rules  *Rules
	budget BudgetView
}

// NewValidator creates a validator over the given rules and budget
// view. Nil rules fall back to Default.
func NewValidator(rules *Rules, budget BudgetView) *Validator {
	if rules == nil {
		rules = Default()
	}
	rules.Validate()
	return &Validator{rules: rules, budget: budget}
}

// EvaluateAction checks a non-spending action: only the domain
// permission applies.
func (v *Validator) EvaluateAction(actor models.Actor, actionDomain models.Domain) Decision {
	if !v.domainPermitted(actor, actionDomain) {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("%s actor %s may not act in %s", actor.Domain, actor.ID, actionDomain),
		}
	}
	return Decision{Allowed: true, RiskLevel: models.RiskLow}
}

// Evaluate checks a proposed spend. The decision is a pure function of
// the actor, the request, the rule tables, and current ledger headroom;
// calling it repeatedly for the same inputs yields the same result.
//
// Risk is the maximum of two independent signals: the spend's share of
// remaining total budget, and binding-commitment keywords in the
// description.
func (v *Validator) Evaluate(actor models.Actor, actionDomain models.Domain, paymentType models.PaymentType, amount float64, description string) Decision {
	if !v.domainPermitted(actor, actionDomain) {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("%s actor %s may not act in %s", actor.Domain, actor.ID, actionDomain),
		}
	}

	// The contractor ban is permanent policy, not a threshold. It is
	// checked before amount validation so no amount, zero and negative
	// included, slips past it.
	if paymentType == models.PaymentContractor {
		return Decision{
			Allowed:   false,
			RiskLevel: models.RiskHigh,
			Reason:    "contractor payments are permanently forbidden",
		}
	}

	if !paymentType.Valid() {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown payment type %q", paymentType),
		}
	}
	if amount <= 0 {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("payment amount must be positive, got %v", amount),
		}
	}

	risk := v.riskLevel(paymentType, amount, description)

	ceiling, autoApprovable := v.rules.AutoApprove[paymentType]
	if autoApprovable && amount <= ceiling {
		return Decision{Allowed: true, RiskLevel: risk}
	}

	reason := fmt.Sprintf("%s of %v exceeds auto-approval ceiling %v", paymentType, amount, ceiling)
	if !autoApprovable {
		reason = fmt.Sprintf("%s has no auto-approval ceiling", paymentType)
	}
	return Decision{
		Allowed:          true,
		RequiresApproval: true,
		RiskLevel:        risk,
		Reason:           reason,
	}
}

// domainPermitted reports whether the actor may act in the given
// domain: its own domain always, or Strategy for the executive tier.
func (v *Validator) domainPermitted(actor models.Actor, actionDomain models.Domain) bool {
	if actor.Domain == actionDomain {
		return true
	}
	return actor.Tier == models.TierExecutive && actionDomain == models.DomainStrategy
}

// riskLevel derives the risk classification for a spend.
func (v *Validator) riskLevel(paymentType models.PaymentType, amount float64, description string) models.RiskLevel {
	risk := models.RiskLow

	// Subscriptions are binding commitments whatever the description says.
	if paymentType == models.PaymentSubscription {
		risk = models.RiskMedium
	}

	if remaining := v.budget.TotalRemaining(); remaining > 0 {
		if amount/remaining >= v.rules.HighRiskShare {
			risk = risk.Max(models.RiskHigh)
		}
	} else {
		// No headroom left at all: any further spend is high risk.
		risk = risk.Max(models.RiskHigh)
	}

	lowered := strings.ToLower(description)
	for _, kw := range v.rules.CommitmentKeywords {
		if strings.Contains(lowered, kw) {
			risk = risk.Max(models.RiskMedium)
			break
		}
	}

	return risk
}
