package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "boardroom",
	Short: "Agent dispatch engine with hard spending controls",
	Long: `Boardroom dispatches a board of LLM directors against a business
objective while keeping every dollar they spend under policy control.

Each selected directorate gets a director agent and an equal share of
the run budget. All spending flows through a guardrail validator and a
two-phase budget ledger; anything over the auto-approval ceilings is
parked for human sign-off and the run carries on around it.

Core capabilities:
- Deterministic dispatch planning from intent flags
- Auto-approval ceilings per payment type, hard contractor ban
- Two-phase reserve/commit budget accounting per director
- Deferred, non-blocking human approvals with expiry
- Persistent audit trail of every run and payment decision`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(approvalsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
