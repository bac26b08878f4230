// Package tui provides the terminal user interface for Boardroom's
// approval queue.
//
// The approvals panel shows the payment requests a running
// orchestration has parked for human sign-off. The operator moves
// through the queue with j/k, approves with 'y', and rejects with 'n'
// followed by a typed reason. Decisions land on the next orchestration
// tick; the panel itself never touches the ledger.
//
// Usage:
//
//	panel := tui.NewApprovalsPanel(orch)
//	program := tea.NewProgram(panel)
//	go program.Run()
//
//	// Keep the budget line current
//	program.Send(tui.BudgetMsg{Spent: 45, Remaining: 9955})
//
//	// Signal completion
//	program.Send(tui.RunDoneMsg{Summary: report.Summary})
//
// The panel refreshes its queue on an interval (configurable with
// SetRefreshRate), so requests raised after startup appear without any
// extra wiring.
package tui
