package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/boardroom-dev/boardroom/internal/config"
	"github.com/boardroom-dev/boardroom/internal/guardrail"
	"github.com/boardroom-dev/boardroom/internal/ledger"
	"github.com/boardroom-dev/boardroom/internal/orchestrator"
	"github.com/boardroom-dev/boardroom/internal/orchestrator/policy"
	"github.com/boardroom-dev/boardroom/internal/tui"
	"github.com/boardroom-dev/boardroom/pkg/models"
)

var (
	runFinance     bool
	runLegal       bool
	runSecurity    bool
	runEngineering bool
	runResearch    bool
	runMarketing   bool
	runHints       []string
	runBudget      float64
	runDryRun      bool
	runHeadless    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch directors against the selected directorates",
	Long: `Run one orchestration over the selected directorates.

Each flagged directorate contributes one plan step; Finance is always
scheduled first whenever anything is flagged, because every other
directorate spends money. The total budget is split equally across the
plan's directors.

Spending during the run is policed by the guardrail rules: payment
types with an auto-approval ceiling clear instantly when under it,
everything else is parked for your sign-off. Parked steps do not block
the rest of the plan.

By default an approvals panel opens so you can decide requests as they
arrive. With --headless, requests are prompted on stdin instead.

Use --dry-run to rehearse the plan with scripted directors: no API
calls are made, but the full guardrail, ledger, and approval machinery
runs against each directorate's sample spending.`,
	RunE: runDispatch,
}

func init() {
	runCmd.Flags().BoolVar(&runFinance, "finance", false, "Include the Finance directorate")
	runCmd.Flags().BoolVar(&runLegal, "legal", false, "Include the Legal directorate")
	runCmd.Flags().BoolVar(&runSecurity, "security", false, "Include the Security directorate")
	runCmd.Flags().BoolVar(&runEngineering, "engineering", false, "Include the Engineering directorate")
	runCmd.Flags().BoolVar(&runResearch, "research", false, "Include the Research directorate")
	runCmd.Flags().BoolVar(&runMarketing, "marketing", false, "Include the Marketing directorate")
	runCmd.Flags().StringSliceVar(&runHints, "hint", nil, "Work item hint routed to its owning directorate (repeatable)")
	runCmd.Flags().Float64Var(&runBudget, "budget", 0, "Total spending ceiling for the run (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Use scripted directors instead of the API")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Run without the approvals panel; prompt on stdin")
}

func runDispatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := models.IntentFlags{
		Finance:     runFinance,
		Legal:       runLegal,
		Security:    runSecurity,
		Engineering: runEngineering,
		Research:    runResearch,
		Marketing:   runMarketing,
		Hints:       runHints,
	}
	if !flags.Any() {
		return fmt.Errorf("select at least one directorate (e.g. --finance --marketing)")
	}

	budget := runBudget
	if !cmd.Flags().Changed("budget") {
		budget = cfg.Defaults.Budget
	}
	if budget <= 0 {
		return fmt.Errorf("budget must be positive, got %v", budget)
	}

	rules := guardrail.Default()
	if cfg.Guardrails.RulesPath != "" {
		rules, err = guardrail.Load(cfg.Guardrails.RulesPath)
		if err != nil {
			return fmt.Errorf("load guardrail rules: %w", err)
		}
	}

	pol := policy.Default()
	if cfg.Defaults.ApprovalTimeout > 0 {
		pol.Approval.PendingTimeout = cfg.Defaults.ApprovalTimeout
	}
	if cfg.Defaults.TickInterval > 0 {
		pol.Loop.TickInterval = cfg.Defaults.TickInterval
	}

	logger, err := orchestrator.NewDebugLogger(cfg.Debug.LogFile)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer logger.Close()

	registry, err := buildRegistry(cfg, runDryRun)
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(flags, budget, registry,
		orchestrator.WithPolicy(pol),
		orchestrator.WithRules(rules),
		orchestrator.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	// Rule edits land mid-run: future spend evaluations pick them up,
	// decided spends keep their outcomes.
	if cfg.Guardrails.RulesPath != "" {
		watcher, werr := config.Watch([]string{cfg.Guardrails.RulesPath}, func(path string) {
			reloaded, lerr := guardrail.Load(path)
			if lerr != nil {
				logger.Log("rules reload failed for %s: %v", path, lerr)
				return
			}
			orch.UpdateRules(reloaded)
			logger.Log("rules reloaded from %s", path)
		})
		if werr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not watch rules file: %v\n", werr)
		} else {
			defer watcher.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		cancel()
	}()

	if runHeadless {
		err = runHeadlessLoop(ctx, orch)
	} else {
		err = runWithPanel(ctx, orch, cfg)
	}

	// Persist whatever happened, interrupted runs included.
	if saveErr := persistRun(orch, flags, budget); saveErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not persist run: %v\n", saveErr)
	}

	if err != nil && err != context.Canceled {
		return err
	}

	printReport(orch.Report())
	return nil
}

// runWithPanel drives the run behind the approvals TUI. The panel owns
// the terminal; orchestration progress feeds it through messages.
func runWithPanel(ctx context.Context, orch *orchestrator.Orchestrator, cfg *config.Config) error {
	panel := tui.NewApprovalsPanel(orch)
	panel.SetRefreshRate(cfg.TUI.RefreshRate)
	program := tea.NewProgram(panel)

	done := make(chan error, 1)
	go func() {
		done <- orch.RunToCompletion(ctx)
	}()

	go func() {
		for event := range orch.Events() {
			program.Send(tui.BudgetMsg{
				Spent:     event.TotalSpent,
				Remaining: event.TotalRemaining,
				Status:    event.BudgetStatus.String(),
			})
			if event.Type == orchestrator.EventRunCompleted {
				program.Send(tui.RunDoneMsg{Summary: orch.Report().Summary})
			}
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("approvals panel: %w", err)
	}

	// Quitting the panel abandons a still-running orchestration.
	select {
	case err := <-done:
		return err
	default:
		return nil
	}
}

// runHeadlessLoop drives the run without a TUI: events stream to
// stdout and approval requests are prompted on stdin.
func runHeadlessLoop(ctx context.Context, orch *orchestrator.Orchestrator) error {
	done := make(chan error, 1)
	go func() {
		done <- orch.RunToCompletion(ctx)
	}()

	stdin := bufio.NewScanner(os.Stdin)
	events := orch.Events()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			printEvent(event)
			if event.Type == orchestrator.EventApprovalRequested && event.Request != nil {
				promptDecision(orch, *event.Request, stdin)
			}

		case err := <-done:
			// Flush whatever the emitter already queued. Emission
			// happens before the run returns, so the buffer is final;
			// on cancellation the channel stays open, so never wait
			// for a close.
			for events != nil {
				select {
				case event, ok := <-events:
					if !ok {
						events = nil
						continue
					}
					printEvent(event)
				default:
					events = nil
				}
			}
			return err
		}
	}
}

// promptDecision asks for one approval decision on stdin.
func promptDecision(orch *orchestrator.Orchestrator, req models.PaymentRequest, stdin *bufio.Scanner) {
	fmt.Printf("  %s %s for %.2f (%s risk): %s\n",
		color.YellowString("approval needed:"), req.PaymentType, req.Amount, req.RiskLevel, req.Description)
	fmt.Print("  Approve? [y/N]: ")
	if !stdin.Scan() {
		return
	}
	answer := strings.ToLower(strings.TrimSpace(stdin.Text()))

	if answer == "y" || answer == "yes" {
		if _, err := orch.Decide(req.ID, true, ""); err != nil {
			fmt.Fprintf(os.Stderr, "  could not approve: %v\n", err)
		}
		return
	}

	fmt.Print("  Reason for rejection: ")
	reason := ""
	if stdin.Scan() {
		reason = strings.TrimSpace(stdin.Text())
	}
	if _, err := orch.Decide(req.ID, false, reason); err != nil {
		fmt.Fprintf(os.Stderr, "  could not reject: %v\n", err)
	}
}

// printEvent renders one progress event for headless output.
func printEvent(event orchestrator.Event) {
	switch event.Type {
	case orchestrator.EventPlanBuilt:
		fmt.Printf("%s %s\n", color.CyanString("plan:"), event.Message)
	case orchestrator.EventStepStarted:
		fmt.Printf("%s step %d (%s)\n", color.CyanString("start:"), event.StepIndex, event.Domain)
	case orchestrator.EventStepCompleted:
		if event.Result != nil && event.Result.Success {
			fmt.Printf("%s step %d (%s) cost %.2f\n",
				color.GreenString("done:"), event.StepIndex, event.Domain, event.Result.CostIncurred)
		} else {
			reason := ""
			if event.Result != nil {
				reason = event.Result.BlockedReason
			}
			fmt.Printf("%s step %d (%s): %s\n",
				color.RedString("failed:"), event.StepIndex, event.Domain, reason)
		}
	case orchestrator.EventStepDeferred:
		fmt.Printf("%s step %d (%s) awaiting approval\n",
			color.YellowString("parked:"), event.StepIndex, event.Domain)
	case orchestrator.EventApprovalResolved:
		if event.Request != nil {
			fmt.Printf("%s %s -> %s\n",
				color.CyanString("decision:"), event.Request.PaymentType, event.Request.Status)
		}
	case orchestrator.EventRunCompleted:
		fmt.Printf("%s spent %.2f, remaining %.2f\n",
			color.New(color.Bold).Sprint("run complete:"), event.TotalSpent, event.TotalRemaining)
	}

	if event.Type == orchestrator.EventStepCompleted && event.BudgetStatus != ledger.BudgetOK {
		fmt.Printf("  %s %s\n", color.YellowString("budget:"), event.BudgetStatus)
	}
}
