package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// DecisionSurface is the slice of the orchestrator the panel needs:
// the pending queue and the decision entry point.
type DecisionSurface interface {
	ListPending() []models.PaymentRequest
	Decide(requestID string, approved bool, reason string) (models.PaymentRequest, error)
}

// BudgetMsg updates the budget line in the header.
type BudgetMsg struct {
	Spent     float64
	Remaining float64
	// Status is the ledger's consumption classification ("OK",
	// "Warning", "Exhausted"). Empty means unknown.
	Status string
}

// RunDoneMsg signals that the orchestration run has completed.
type RunDoneMsg struct {
	Summary string
}

// refreshMsg drives the periodic queue refresh.
type refreshMsg time.Time

// defaultRefreshInterval is how often the pending queue is re-pulled
// when no rate is configured.
const defaultRefreshInterval = 500 * time.Millisecond

// ApprovalsPanel is the bubbletea model for the approval queue.
type ApprovalsPanel struct {
	// surface is where decisions are sent.
	surface DecisionSurface
	// requests is the current pending queue, oldest first.
	requests []models.PaymentRequest
	// cursor is the selected queue entry.
	cursor int
	// rejecting is true while the reason prompt is open.
	rejecting bool
	// reason collects the rejection reason.
	reason textinput.Model
	// status is the last action's outcome line.
	status string
	// spent and remaining mirror the ledger totals.
	spent        float64
	remaining    float64
	budgetStatus string
	// width is the terminal width.
	width int
	// done indicates the run has completed.
	done bool
	// summary holds the final run summary once done.
	summary string
	// quitting indicates the panel is shutting down.
	quitting bool

	titleStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	dimStyle      lipgloss.Style
	promptStyle   lipgloss.Style
	warnStyle     lipgloss.Style
	riskStyles    map[models.RiskLevel]lipgloss.Style

	refreshEvery time.Duration
}

// SetRefreshRate overrides how often the pending queue is re-pulled.
// Non-positive values keep the default. Call before the program starts.
func (p *ApprovalsPanel) SetRefreshRate(d time.Duration) {
	if d > 0 {
		p.refreshEvery = d
	}
}

// NewApprovalsPanel creates the approval queue panel over the given
// decision surface.
func NewApprovalsPanel(surface DecisionSurface) *ApprovalsPanel {
	reason := textinput.New()
	reason.Placeholder = "Reason for rejection..."
	reason.CharLimit = 200
	reason.Width = 50

	return &ApprovalsPanel{
		surface:  surface,
		requests: surface.ListPending(),
		reason:   reason,
		width:    80,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 2),
		selectedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")),
		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		promptStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		riskStyles: map[models.RiskLevel]lipgloss.Style{
			models.RiskLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			models.RiskMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			models.RiskHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		},
	}
}

// Init implements tea.Model.
func (p *ApprovalsPanel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, p.refreshTick())
}

func (p *ApprovalsPanel) refreshTick() tea.Cmd {
	interval := p.refreshEvery
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Update implements tea.Model.
func (p *ApprovalsPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.rejecting {
			return p.updateRejecting(msg)
		}
		return p.updateBrowsing(msg)

	case tea.WindowSizeMsg:
		p.width = msg.Width

	case refreshMsg:
		p.refresh()
		return p, p.refreshTick()

	case BudgetMsg:
		p.spent = msg.Spent
		p.remaining = msg.Remaining
		p.budgetStatus = msg.Status

	case RunDoneMsg:
		p.done = true
		p.summary = msg.Summary
		p.refresh()
	}

	return p, nil
}

// updateBrowsing handles keys while moving through the queue.
func (p *ApprovalsPanel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		p.quitting = true
		return p, tea.Quit

	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}

	case "down", "j":
		if p.cursor < len(p.requests)-1 {
			p.cursor++
		}

	case "y", "Y":
		if req, ok := p.selected(); ok {
			p.decide(req.ID, true, "")
		}

	case "n", "N":
		if _, ok := p.selected(); ok {
			p.rejecting = true
			p.reason.Reset()
			p.reason.Focus()
		}
	}
	return p, nil
}

// updateRejecting handles keys while the reason prompt is open.
func (p *ApprovalsPanel) updateRejecting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		p.rejecting = false
		return p, nil

	case "enter":
		req, ok := p.selected()
		p.rejecting = false
		if ok {
			p.decide(req.ID, false, p.reason.Value())
		}
		return p, nil
	}

	var cmd tea.Cmd
	p.reason, cmd = p.reason.Update(msg)
	return p, cmd
}

// selected returns the request under the cursor.
func (p *ApprovalsPanel) selected() (models.PaymentRequest, bool) {
	if p.cursor < 0 || p.cursor >= len(p.requests) {
		return models.PaymentRequest{}, false
	}
	return p.requests[p.cursor], true
}

// decide sends one decision and refreshes the queue. A request decided
// elsewhere in the meantime is reported, not retried.
func (p *ApprovalsPanel) decide(id string, approved bool, reason string) {
	verdict := "approved"
	if !approved {
		verdict = "rejected"
	}

	if _, err := p.surface.Decide(id, approved, reason); err != nil {
		p.status = fmt.Sprintf("could not decide %s: %v", shortID(id), err)
	} else {
		p.status = fmt.Sprintf("%s %s", verdict, shortID(id))
	}
	p.refresh()
}

// refresh re-pulls the pending queue and clamps the cursor.
func (p *ApprovalsPanel) refresh() {
	p.requests = p.surface.ListPending()
	if p.cursor >= len(p.requests) {
		p.cursor = len(p.requests) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// View implements tea.Model.
func (p *ApprovalsPanel) View() string {
	if p.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(p.titleStyle.Render(" Boardroom Approvals "))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Spent: %.2f   Remaining: %.2f   Pending: %d",
		p.spent, p.remaining, len(p.requests)))
	if p.budgetStatus != "" && p.budgetStatus != "OK" {
		sb.WriteString("   " + p.warnStyle.Render("Budget: "+p.budgetStatus))
	}
	sb.WriteString("\n\n")

	if len(p.requests) == 0 {
		if p.done {
			sb.WriteString("Run complete. ")
			if p.summary != "" {
				sb.WriteString(p.summary)
			}
			sb.WriteString("\n\n")
			sb.WriteString(p.dimStyle.Render("(q to exit)"))
			return sb.String()
		}
		sb.WriteString(p.dimStyle.Render("No approvals waiting."))
		sb.WriteString("\n")
	}

	for i, req := range p.requests {
		line := fmt.Sprintf(" %s  %-16s %10.2f  %s  %s",
			shortID(req.ID), req.PaymentType, req.Amount,
			p.riskBadge(req.RiskLevel), truncate(req.Description, p.width-50))
		if i == p.cursor {
			line = p.selectedStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	if p.rejecting {
		sb.WriteString(p.promptStyle.Render("Reject with reason:"))
		sb.WriteString("\n")
		sb.WriteString(p.reason.View())
		sb.WriteString("\n")
		sb.WriteString(p.dimStyle.Render("(enter to confirm, esc to cancel)"))
		return sb.String()
	}

	if p.status != "" {
		sb.WriteString(p.status)
		sb.WriteString("\n")
	}
	sb.WriteString(p.dimStyle.Render("(j/k to move, y to approve, n to reject, q to quit)"))
	return sb.String()
}

// riskBadge renders the colored risk label.
func (p *ApprovalsPanel) riskBadge(risk models.RiskLevel) string {
	style, ok := p.riskStyles[risk]
	if !ok {
		return risk.String()
	}
	return style.Render(fmt.Sprintf("%-6s", risk))
}

// Requests returns the queue as last refreshed.
func (p *ApprovalsPanel) Requests() []models.PaymentRequest {
	return p.requests
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, limit int) string {
	if limit < 10 {
		limit = 10
	}
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
