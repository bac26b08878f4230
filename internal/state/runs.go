package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// Run is the persisted record of one orchestration run.
type Run struct {
	ID          string        `json:"id"`
	Intent      string        `json:"intent"`
	TotalBudget float64       `json:"total_budget"`
	TotalSpent  float64       `json:"total_spent"`
	Phase       models.Phase  `json:"phase"`
	Summary     string        `json:"summary"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at"`
}

// StepResult is the persisted outcome of one plan step.
type StepResult struct {
	RunID         string        `json:"run_id"`
	StepIndex     int           `json:"step_index"`
	Domain        models.Domain `json:"domain"`
	Success       bool          `json:"success"`
	Deliverables  []string      `json:"deliverables"`
	CostIncurred  float64       `json:"cost_incurred"`
	BlockedReason string        `json:"blocked_reason"`
}

// PaymentDecision is the persisted record of one payment request and
// its eventual outcome.
type PaymentDecision struct {
	ID             string               `json:"id"`
	RunID          string               `json:"run_id"`
	RequestedBy    string               `json:"requested_by"`
	PaymentType    models.PaymentType   `json:"payment_type"`
	Amount         float64              `json:"amount"`
	Description    string               `json:"description"`
	RiskLevel      models.RiskLevel     `json:"risk_level"`
	Status         models.PaymentStatus `json:"status"`
	DecisionReason string               `json:"decision_reason"`
	CreatedAt      time.Time            `json:"created_at"`
	DecidedAt      *time.Time           `json:"decided_at"`
}

// Run CRUD operations

// CreateRun inserts a new run record.
func (db *DB) CreateRun(r *Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (id, intent, total_budget, total_spent, phase, summary, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Intent, r.TotalBudget, r.TotalSpent, string(r.Phase), r.Summary, formatTime(r.StartedAt))
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil without error when the run
// does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, intent, total_budget, total_spent, phase, summary, started_at, completed_at
		FROM runs WHERE id = ?
	`, id)

	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// UpdateRun updates a run's mutable fields.
func (db *DB) UpdateRun(r *Run) error {
	var completedAt any
	if r.CompletedAt != nil {
		completedAt = formatTime(*r.CompletedAt)
	}
	_, err := db.Exec(`
		UPDATE runs SET total_spent = ?, phase = ?, summary = ?, completed_at = ?
		WHERE id = ?
	`, r.TotalSpent, string(r.Phase), r.Summary, completedAt, r.ID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// ListRuns lists runs newest first, optionally filtered by phase.
func (db *DB) ListRuns(phase *models.Phase) ([]Run, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if phase != nil {
		rows, err = db.Query(`
			SELECT id, intent, total_budget, total_spent, phase, summary, started_at, completed_at
			FROM runs WHERE phase = ? ORDER BY started_at DESC
		`, string(*phase))
	} else {
		rows, err = db.Query(`
			SELECT id, intent, total_budget, total_spent, phase, summary, started_at, completed_at
			FROM runs ORDER BY started_at DESC
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recently started run, or nil when the
// store is empty.
func (db *DB) LatestRun() (*Run, error) {
	row := db.QueryRow(`
		SELECT id, intent, total_budget, total_spent, phase, summary, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT 1
	`)

	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

func scanRun(scan func(...any) error) (*Run, error) {
	var (
		r           Run
		phase       string
		summary     sql.NullString
		startedAt   string
		completedAt sql.NullString
	)
	if err := scan(&r.ID, &r.Intent, &r.TotalBudget, &r.TotalSpent, &phase, &summary, &startedAt, &completedAt); err != nil {
		return nil, err
	}
	r.Phase = models.Phase(phase)
	r.Summary = summary.String
	r.StartedAt, _ = parseTime(startedAt)
	r.CompletedAt = parseNullableTime(completedAt)
	return &r, nil
}

// Step result operations

// UpsertStepResult records or replaces the outcome of one plan step. A
// step that was deferred and later re-attempted overwrites its earlier
// row.
func (db *DB) UpsertStepResult(sr *StepResult) error {
	deliverables, err := json.Marshal(sr.Deliverables)
	if err != nil {
		return fmt.Errorf("marshal deliverables: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO step_results (run_id, step_index, domain, success, deliverables, cost_incurred, blocked_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step_index) DO UPDATE SET
			success = excluded.success,
			deliverables = excluded.deliverables,
			cost_incurred = excluded.cost_incurred,
			blocked_reason = excluded.blocked_reason
	`, sr.RunID, sr.StepIndex, string(sr.Domain), sr.Success, string(deliverables), sr.CostIncurred, sr.BlockedReason)
	if err != nil {
		return fmt.Errorf("upsert step result: %w", err)
	}
	return nil
}

// ListStepResults returns a run's step results in plan order.
func (db *DB) ListStepResults(runID string) ([]StepResult, error) {
	rows, err := db.Query(`
		SELECT run_id, step_index, domain, success, deliverables, cost_incurred, blocked_reason
		FROM step_results WHERE run_id = ? ORDER BY step_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list step results: %w", err)
	}
	defer rows.Close()

	var results []StepResult
	for rows.Next() {
		var (
			sr            StepResult
			domain        string
			deliverables  sql.NullString
			blockedReason sql.NullString
		)
		if err := rows.Scan(&sr.RunID, &sr.StepIndex, &domain, &sr.Success, &deliverables, &sr.CostIncurred, &blockedReason); err != nil {
			return nil, fmt.Errorf("scan step result: %w", err)
		}
		sr.Domain = models.Domain(domain)
		sr.BlockedReason = blockedReason.String
		if deliverables.Valid && deliverables.String != "" {
			if err := json.Unmarshal([]byte(deliverables.String), &sr.Deliverables); err != nil {
				return nil, fmt.Errorf("unmarshal deliverables: %w", err)
			}
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// SaveSnapshot persists one consistent view of a run: the run row plus
// every step result and payment decision. Called after each pass so a
// crash never loses more than the pass in flight.
func (db *DB) SaveSnapshot(run *Run, steps []StepResult, decisions []PaymentDecision) error {
	existing, err := db.GetRun(run.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := db.CreateRun(run); err != nil {
			return err
		}
	} else if err := db.UpdateRun(run); err != nil {
		return err
	}

	for i := range steps {
		if err := db.UpsertStepResult(&steps[i]); err != nil {
			return err
		}
	}
	for i := range decisions {
		if err := db.UpsertPaymentDecision(&decisions[i]); err != nil {
			return err
		}
	}
	return nil
}

// Payment decision operations

// UpsertPaymentDecision records a payment request, replacing an earlier
// pending row once the decision lands.
func (db *DB) UpsertPaymentDecision(p *PaymentDecision) error {
	var decidedAt any
	if p.DecidedAt != nil {
		decidedAt = formatTime(*p.DecidedAt)
	}
	_, err := db.Exec(`
		INSERT INTO payment_decisions (id, run_id, requested_by, payment_type, amount, description, risk_level, status, decision_reason, created_at, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			decision_reason = excluded.decision_reason,
			decided_at = excluded.decided_at
	`, p.ID, p.RunID, p.RequestedBy, string(p.PaymentType), p.Amount, p.Description,
		int(p.RiskLevel), string(p.Status), p.DecisionReason, formatTime(p.CreatedAt), decidedAt)
	if err != nil {
		return fmt.Errorf("upsert payment decision: %w", err)
	}
	return nil
}

// ListPaymentDecisions returns a run's payment decisions oldest first,
// optionally filtered by status.
func (db *DB) ListPaymentDecisions(runID string, status *models.PaymentStatus) ([]PaymentDecision, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status != nil {
		rows, err = db.Query(`
			SELECT id, run_id, requested_by, payment_type, amount, description, risk_level, status, decision_reason, created_at, decided_at
			FROM payment_decisions WHERE run_id = ? AND status = ? ORDER BY created_at
		`, runID, string(*status))
	} else {
		rows, err = db.Query(`
			SELECT id, run_id, requested_by, payment_type, amount, description, risk_level, status, decision_reason, created_at, decided_at
			FROM payment_decisions WHERE run_id = ? ORDER BY created_at
		`, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("list payment decisions: %w", err)
	}
	defer rows.Close()

	var decisions []PaymentDecision
	for rows.Next() {
		var (
			p              PaymentDecision
			paymentType    string
			riskLevel      int
			status         string
			description    sql.NullString
			decisionReason sql.NullString
			createdAt      string
			decidedAt      sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.RunID, &p.RequestedBy, &paymentType, &p.Amount, &description,
			&riskLevel, &status, &decisionReason, &createdAt, &decidedAt); err != nil {
			return nil, fmt.Errorf("scan payment decision: %w", err)
		}
		p.PaymentType = models.PaymentType(paymentType)
		p.RiskLevel = models.RiskLevel(riskLevel)
		p.Status = models.PaymentStatus(status)
		p.Description = description.String
		p.DecisionReason = decisionReason.String
		p.CreatedAt, _ = parseTime(createdAt)
		p.DecidedAt = parseNullableTime(decidedAt)
		decisions = append(decisions, p)
	}
	return decisions, rows.Err()
}
