package orchestrator

import (
	"fmt"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// Consolidate merges a run's results, pending approvals, and risk
// observations into one final report. It is pure aggregation: the state
// is not mutated.
func Consolidate(state OrchestrationState, totalSpent, totalRemaining float64) models.FinalReport {
	report := models.FinalReport{
		RunID:            state.RunID,
		Results:          state.FinalResults(),
		PendingApprovals: append([]models.PaymentRequest(nil), state.PendingApprovals...),
		TotalSpent:       totalSpent,
		TotalRemaining:   totalRemaining,
	}

	succeeded := 0
	for _, r := range report.Results {
		if r.Success {
			succeeded++
			continue
		}
		if r.BlockedReason != "" {
			report.RiskFlags = append(report.RiskFlags,
				fmt.Sprintf("%s step blocked: %s", r.Domain, r.BlockedReason))
		}
	}

	for _, req := range report.PendingApprovals {
		flag := fmt.Sprintf("pending %s approval for %v", req.PaymentType, req.Amount)
		if req.RiskLevel == models.RiskHigh {
			flag = "high-risk " + flag
		}
		report.RiskFlags = append(report.RiskFlags, flag)
	}

	report.Summary = fmt.Sprintf("%d/%d steps succeeded, %d approvals pending, %.2f spent, %.2f remaining",
		succeeded, len(state.Plan.Steps), len(report.PendingApprovals), totalSpent, totalRemaining)
	return report
}
