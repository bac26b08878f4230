package main

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"

	"github.com/boardroom-dev/boardroom/internal/agent"
	"github.com/boardroom-dev/boardroom/internal/api"
	"github.com/boardroom-dev/boardroom/internal/config"
	"github.com/boardroom-dev/boardroom/internal/orchestrator"
	"github.com/boardroom-dev/boardroom/internal/state"
	"github.com/boardroom-dev/boardroom/pkg/models"
)

// buildRegistry registers a director for every directorate so any plan
// the flags produce can be resolved. Dry runs get scripted directors;
// otherwise every director shares one API client.
func buildRegistry(cfg *config.Config, dryRun bool) (*agent.Registry, error) {
	var directors []agent.Director

	if dryRun {
		for _, domain := range models.Directorates() {
			directors = append(directors, agent.NewScripted(domain, dryRunScript(domain)))
		}
		return agent.NewRegistry(directors...)
	}

	source, apiKey, err := config.ResolveCredentials(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve API credentials: %w (try --dry-run)", err)
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: source == config.CredentialBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	for _, domain := range models.Directorates() {
		directors = append(directors, agent.NewClaude(domain, client, agent.DefaultCallFee))
	}
	return agent.NewRegistry(directors...)
}

// dryRunScript returns sample spending for one directorate, chosen to
// exercise both auto-approved and gated payment types.
func dryRunScript(domain models.Domain) agent.Script {
	switch domain {
	case models.DomainFinance:
		return agent.Script{Spends: []agent.ScriptedSpend{
			{PaymentType: models.PaymentAPIFee, Amount: 45, Description: "forecasting tooling"},
		}}
	case models.DomainLegal:
		return agent.Script{Spends: []agent.ScriptedSpend{
			{PaymentType: models.PaymentLegalFiling, Amount: 350, Description: "trademark filing"},
		}}
	case models.DomainSecurity:
		return agent.Script{Spends: []agent.ScriptedSpend{
			{PaymentType: models.PaymentAPIFee, Amount: 80, Description: "dependency scan credits"},
		}}
	case models.DomainEngineering:
		return agent.Script{Spends: []agent.ScriptedSpend{
			{PaymentType: models.PaymentSubscription, Amount: 49, Description: "ci runner subscription"},
		}}
	case models.DomainResearch:
		return agent.Script{Spends: []agent.ScriptedSpend{
			{PaymentType: models.PaymentAPIFee, Amount: 25, Description: "survey panel credits"},
		}}
	case models.DomainMarketing:
		return agent.Script{Spends: []agent.ScriptedSpend{
			{PaymentType: models.PaymentAdSpend, Amount: 1200, Description: "launch campaign"},
		}}
	default:
		return agent.Script{}
	}
}

// intentString flattens intent flags into the persisted form.
func intentString(flags models.IntentFlags) string {
	var parts []string
	for _, d := range []struct {
		on     bool
		domain models.Domain
	}{
		{flags.Finance, models.DomainFinance},
		{flags.Legal, models.DomainLegal},
		{flags.Security, models.DomainSecurity},
		{flags.Engineering, models.DomainEngineering},
		{flags.Research, models.DomainResearch},
		{flags.Marketing, models.DomainMarketing},
	} {
		if d.on {
			parts = append(parts, string(d.domain))
		}
	}
	return strings.Join(parts, ",")
}

// persistRun writes the run's final state to the audit database.
func persistRun(orch *orchestrator.Orchestrator, flags models.IntentFlags, budget float64) error {
	db, err := state.OpenGlobal()
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	snapshot := orch.State()
	report := orch.Report()

	run := &state.Run{
		ID:          snapshot.RunID,
		Intent:      intentString(flags),
		TotalBudget: budget,
		TotalSpent:  report.TotalSpent,
		Phase:       snapshot.Phase,
		Summary:     report.Summary,
		StartedAt:   snapshot.StartedAt,
		CompletedAt: snapshot.CompletedAt,
	}

	var steps []state.StepResult
	for i, r := range snapshot.Results {
		if r == nil {
			continue
		}
		steps = append(steps, state.StepResult{
			RunID:         snapshot.RunID,
			StepIndex:     i,
			Domain:        r.Domain,
			Success:       r.Success,
			Deliverables:  r.Deliverables,
			CostIncurred:  r.CostIncurred,
			BlockedReason: r.BlockedReason,
		})
	}

	var decisions []state.PaymentDecision
	for _, req := range orch.ListApprovals() {
		decisions = append(decisions, state.PaymentDecision{
			ID:             req.ID,
			RunID:          snapshot.RunID,
			RequestedBy:    req.RequestedBy,
			PaymentType:    req.PaymentType,
			Amount:         req.Amount,
			Description:    req.Description,
			RiskLevel:      req.RiskLevel,
			Status:         req.Status,
			DecisionReason: req.DecisionReason,
			CreatedAt:      req.CreatedAt,
			DecidedAt:      req.DecidedAt,
		})
	}

	return db.SaveSnapshot(run, steps, decisions)
}

// printReport renders the final report to stdout.
func printReport(report models.FinalReport) {
	fmt.Println()
	fmt.Println(color.New(color.Bold).Sprint(report.Summary))

	for _, r := range report.Results {
		if r.Success {
			fmt.Printf("  %s %s (%.2f)\n", color.GreenString("✓"), r.Domain, r.CostIncurred)
			for _, d := range r.Deliverables {
				fmt.Printf("      - %s\n", d)
			}
		} else {
			fmt.Printf("  %s %s: %s\n", color.RedString("✗"), r.Domain, r.BlockedReason)
		}
	}

	if len(report.PendingApprovals) > 0 {
		fmt.Printf("\n%s\n", color.YellowString("Still pending:"))
		for _, req := range report.PendingApprovals {
			fmt.Printf("  %s %s for %.2f: %s\n", req.ID[:8], req.PaymentType, req.Amount, req.Description)
		}
	}

	for _, flag := range report.RiskFlags {
		fmt.Printf("  %s %s\n", color.YellowString("⚠"), flag)
	}
}
