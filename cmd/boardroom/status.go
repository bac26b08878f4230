package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/boardroom-dev/boardroom/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show a run's outcome and budget position",
	Long: `Display the recorded state of a run.

Shows:
  - Run phase, intent, and duration
  - Budget position (allocated, spent)
  - Every step's outcome and cost

Without a run ID, the most recent run is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	dbPath := state.GlobalDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No runs recorded. Start one with 'boardroom run'.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
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

	displayRun(run)

	results, err := db.ListStepResults(run.ID)
	if err != nil {
		return fmt.Errorf("list step results: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("\nNo step results recorded.")
		return nil
	}

	fmt.Println("\nSteps:")
	for _, r := range results {
		if r.Success {
			fmt.Printf("  %s %d %-12s %10.2f\n", color.GreenString("✓"), r.StepIndex, r.Domain, r.CostIncurred)
		} else {
			fmt.Printf("  %s %d %-12s %s\n", color.RedString("✗"), r.StepIndex, r.Domain, r.BlockedReason)
		}
	}
	return nil
}

// displayRun prints the run header block.
func displayRun(run *state.Run) {
	fmt.Printf("Run:    %s\n", run.ID)
	fmt.Printf("Intent: %s\n", run.Intent)
	fmt.Printf("Phase:  %s\n", run.Phase)
	fmt.Printf("Budget: %.2f allocated, %.2f spent\n", run.TotalBudget, run.TotalSpent)

	if run.CompletedAt != nil {
		fmt.Printf("Took:   %s\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
	} else {
		fmt.Printf("Since:  %s\n", run.StartedAt.Format(time.RFC3339))
	}

	if run.Summary != "" {
		fmt.Printf("\n%s\n", run.Summary)
	}
}
