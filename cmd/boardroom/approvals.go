package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/boardroom-dev/boardroom/internal/state"
	"github.com/boardroom-dev/boardroom/pkg/models"
)

var approvalsPendingOnly bool

var approvalsCmd = &cobra.Command{
	Use:   "approvals [run-id]",
	Short: "Show a run's payment decisions",
	Long: `List the payment requests a run has raised and how each was decided.

Without a run ID, the most recent run is shown. Use --pending to see
only requests that never received a decision (including ones that
expired waiting).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApprovals,
}

func init() {
	approvalsCmd.Flags().BoolVar(&approvalsPendingOnly, "pending", false, "Show only undecided requests")
}

func runApprovals(cmd *cobra.Command, args []string) error {
	db, err := state.OpenGlobal()
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	run, err := resolveRun(db, args)
	if err != nil {
		return err
	}
	if run == nil {
		fmt.Println("No runs recorded. Start one with 'boardroom run'.")
		return nil
	}

	var status *models.PaymentStatus
	if approvalsPendingOnly {
		pending := models.PaymentPending
		status = &pending
	}

	decisions, err := db.ListPaymentDecisions(run.ID, status)
	if err != nil {
		return fmt.Errorf("list payment decisions: %w", err)
	}

	fmt.Printf("Run %s (%s)\n\n", run.ID, run.Intent)
	if len(decisions) == 0 {
		fmt.Println("No payment requests recorded for this run.")
		return nil
	}

	for _, d := range decisions {
		fmt.Printf("  %s  %-16s %10.2f  %-6s  %s\n",
			d.ID[:8], d.PaymentType, d.Amount, d.RiskLevel, statusBadge(d.Status))
		if d.Description != "" {
			fmt.Printf("      %s\n", d.Description)
		}
		if d.DecisionReason != "" {
			fmt.Printf("      reason: %s\n", d.DecisionReason)
		}
	}
	return nil
}

// resolveRun finds the run named by args, or the latest run.
func resolveRun(db *state.DB, args []string) (*state.Run, error) {
	if len(args) == 1 {
		run, err := db.GetRun(args[0])
		if err != nil {
			return nil, fmt.Errorf("get run: %w", err)
		}
		if run == nil {
			return nil, fmt.Errorf("no run with ID %q", args[0])
		}
		return run, nil
	}

	run, err := db.LatestRun()
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// statusBadge colors a payment status for terminal output.
func statusBadge(status models.PaymentStatus) string {
	switch status {
	case models.PaymentApproved:
		return color.GreenString(string(status))
	case models.PaymentRejected:
		return color.RedString(string(status))
	case models.PaymentExpired:
		return color.YellowString(string(status))
	default:
		return color.CyanString(string(status))
	}
}
