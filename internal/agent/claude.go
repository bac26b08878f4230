package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// CompletionClient is the LLM surface a Claude-backed director needs.
// *api.Client satisfies it.
type CompletionClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// DefaultCallFee is the per-completion API fee a Claude director
// declares before running, in dollars.
const DefaultCallFee = 2.50

// ClaudeDirector runs a directorate step with Claude-generated
// deliverables. It declares its API spend up front, routes it through
// the toolbox like any other payment, and only then calls the API.
type ClaudeDirector struct {
	domain  models.Domain
	client  CompletionClient
	callFee float64
}

// NewClaude creates a Claude-backed director for the domain. A
// non-positive callFee falls back to DefaultCallFee.
func NewClaude(domain models.Domain, client CompletionClient, callFee float64) *ClaudeDirector {
	if callFee <= 0 {
		callFee = DefaultCallFee
	}
	return &ClaudeDirector{domain: domain, client: client, callFee: callFee}
}

// Domain returns the directorate this director serves.
func (d *ClaudeDirector) Domain() models.Domain {
	return d.domain
}

// Execute declares the step's API fee, then produces one deliverable
// for the directorate plus one per specialist hint.
func (d *ClaudeDirector) Execute(ctx context.Context, self models.Actor, step models.PlanStep, tb Toolbox) (models.AgentExecutionResult, error) {
	result := models.AgentExecutionResult{
		ActorID: self.ID,
		Domain:  d.domain,
	}

	calls := 1 + len(step.Hints)
	fee := d.callFee * float64(calls)
	desc := fmt.Sprintf("Claude API usage for %s step (%d completions)", d.domain, calls)

	proceed, err := routeSpend(ctx, tb, self, models.PaymentAPIFee, fee, desc, &result)
	if err != nil {
		return result, err
	}
	if !proceed {
		return result, nil
	}

	system, task := directorBrief(d.domain)

	text, err := d.client.Complete(ctx, system, task)
	if err != nil {
		result.Success = false
		result.BlockedReason = models.BlockedAgentFailure
		return result, nil
	}
	result.Deliverables = append(result.Deliverables, deliverable(string(d.domain), text))

	for _, hint := range step.Hints {
		prompt := fmt.Sprintf("As the %s specialist, produce the %s deliverable for the plan.", hint, hint)
		text, err := d.client.Complete(ctx, system, prompt)
		if err != nil {
			result.Success = false
			result.BlockedReason = models.BlockedAgentFailure
			return result, nil
		}
		result.Deliverables = append(result.Deliverables, deliverable(hint, text))
	}

	result.Success = true
	return result, nil
}

// directorBrief returns the system prompt and base task for a
// directorate. The domain set is fixed, so this is a closed switch.
func directorBrief(domain models.Domain) (system, task string) {
	system = fmt.Sprintf("You are the %s director of an early-stage company. Be concrete and brief.", domain)

	switch domain {
	case models.DomainFinance:
		task = "Draft the budget allocation and payment oversight plan."
	case models.DomainLegal:
		task = "Draft the filings and compliance checklist."
	case models.DomainSecurity:
		task = "Draft the security and risk review."
	case models.DomainEngineering:
		task = "Draft the product delivery plan."
	case models.DomainResearch:
		task = "Draft the market and competitor analysis."
	case models.DomainMarketing:
		task = "Draft the brand and campaign plan."
	default:
		task = "Draft the operating plan for your domain."
	}
	return system, task
}

// deliverable labels a generated text for the result record.
func deliverable(label, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(empty)"
	}
	return fmt.Sprintf("%s: %s", label, text)
}
