package state

import (
	"reflect"
	"testing"
	"time"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

func sampleRun(id string) *Run {
	return &Run{
		ID:          id,
		Intent:      "finance,marketing",
		TotalBudget: 50000,
		Phase:       models.PhaseExecution,
		StartedAt:   time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestRunCRUD(t *testing.T) {
	db := setupTestDB(t)

	run := sampleRun("run-1")
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil for existing run")
	}
	if got.Intent != run.Intent || got.TotalBudget != run.TotalBudget || got.Phase != run.Phase {
		t.Errorf("GetRun = %+v, want %+v", got, run)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}

	completed := time.Date(2026, 2, 10, 10, 30, 0, 0, time.UTC)
	run.Phase = models.PhaseCompletion
	run.TotalSpent = 5045
	run.Summary = "2/2 steps succeeded"
	run.CompletedAt = &completed
	if err := db.UpdateRun(run); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	got, err = db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun after update failed: %v", err)
	}
	if got.Phase != models.PhaseCompletion || got.TotalSpent != 5045 {
		t.Errorf("updated run = %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completed) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, completed)
	}
}

func TestGetRun_Missing(t *testing.T) {
	db := setupTestDB(t)
	got, err := db.GetRun("nope")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetRun = %+v, want nil", got)
	}
}

func TestListRuns_FilterAndOrder(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	for i, phase := range []models.Phase{models.PhaseCompletion, models.PhaseExecution, models.PhaseCompletion} {
		r := sampleRun("run-" + string(rune('a'+i)))
		r.Phase = phase
		r.StartedAt = base.Add(time.Duration(i) * time.Hour)
		if err := db.CreateRun(r); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	all, err := db.ListRuns(nil)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListRuns = %d runs, want 3", len(all))
	}
	if all[0].ID != "run-c" || all[2].ID != "run-a" {
		t.Errorf("runs not newest-first: %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}

	phase := models.PhaseCompletion
	done, err := db.ListRuns(&phase)
	if err != nil {
		t.Fatalf("ListRuns(completion) failed: %v", err)
	}
	if len(done) != 2 {
		t.Errorf("ListRuns(completion) = %d runs, want 2", len(done))
	}

	latest, err := db.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if latest == nil || latest.ID != "run-c" {
		t.Errorf("LatestRun = %+v, want run-c", latest)
	}
}

func TestStepResultUpsert(t *testing.T) {
	db := setupTestDB(t)
	if err := db.CreateRun(sampleRun("run-1")); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	deferred := &StepResult{
		RunID:         "run-1",
		StepIndex:     1,
		Domain:        models.DomainMarketing,
		Success:       false,
		BlockedReason: models.BlockedApprovalPending,
	}
	if err := db.UpsertStepResult(deferred); err != nil {
		t.Fatalf("UpsertStepResult failed: %v", err)
	}

	// The re-attempt after approval replaces the deferred row.
	final := &StepResult{
		RunID:        "run-1",
		StepIndex:    1,
		Domain:       models.DomainMarketing,
		Success:      true,
		Deliverables: []string{"marketing operating plan", "branding brief"},
		CostIncurred: 5000,
	}
	if err := db.UpsertStepResult(final); err != nil {
		t.Fatalf("UpsertStepResult (replace) failed: %v", err)
	}

	results, err := db.ListStepResults("run-1")
	if err != nil {
		t.Fatalf("ListStepResults failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("ListStepResults = %d rows, want 1", len(results))
	}
	got := results[0]
	if !got.Success || got.CostIncurred != 5000 || got.BlockedReason != "" {
		t.Errorf("step result = %+v", got)
	}
	if !reflect.DeepEqual(got.Deliverables, final.Deliverables) {
		t.Errorf("Deliverables = %v, want %v", got.Deliverables, final.Deliverables)
	}
}

func TestPaymentDecisionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	if err := db.CreateRun(sampleRun("run-1")); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	created := time.Date(2026, 2, 10, 9, 15, 0, 0, time.UTC)
	pending := &PaymentDecision{
		ID:          "req-1",
		RunID:       "run-1",
		RequestedBy: "director-marketing",
		PaymentType: models.PaymentServiceOrder,
		Amount:      5000,
		Description: "launch package",
		RiskLevel:   models.RiskHigh,
		Status:      models.PaymentPending,
		CreatedAt:   created,
	}
	if err := db.UpsertPaymentDecision(pending); err != nil {
		t.Fatalf("UpsertPaymentDecision failed: %v", err)
	}

	statusPending := models.PaymentPending
	got, err := db.ListPaymentDecisions("run-1", &statusPending)
	if err != nil {
		t.Fatalf("ListPaymentDecisions failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "req-1" {
		t.Fatalf("pending decisions = %+v", got)
	}

	decided := created.Add(10 * time.Minute)
	pending.Status = models.PaymentApproved
	pending.DecisionReason = "worth it"
	pending.DecidedAt = &decided
	if err := db.UpsertPaymentDecision(pending); err != nil {
		t.Fatalf("UpsertPaymentDecision (decide) failed: %v", err)
	}

	all, err := db.ListPaymentDecisions("run-1", nil)
	if err != nil {
		t.Fatalf("ListPaymentDecisions failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("decisions = %d rows, want 1 (upsert replaces)", len(all))
	}
	if all[0].Status != models.PaymentApproved || all[0].DecisionReason != "worth it" {
		t.Errorf("decided row = %+v", all[0])
	}
	if all[0].DecidedAt == nil || !all[0].DecidedAt.Equal(decided) {
		t.Errorf("DecidedAt = %v, want %v", all[0].DecidedAt, decided)
	}
	if all[0].RiskLevel != models.RiskHigh {
		t.Errorf("RiskLevel = %v, want high", all[0].RiskLevel)
	}
}

func TestSaveSnapshot(t *testing.T) {
	db := setupTestDB(t)

	run := sampleRun("run-1")
	steps := []StepResult{
		{RunID: "run-1", StepIndex: 0, Domain: models.DomainFinance, Success: true, Deliverables: []string{"finance operating plan"}, CostIncurred: 45},
	}
	decisions := []PaymentDecision{
		{ID: "req-1", RunID: "run-1", RequestedBy: "director-marketing", PaymentType: models.PaymentAdSpend,
			Amount: 300, Status: models.PaymentPending, CreatedAt: time.Now().UTC()},
	}

	if err := db.SaveSnapshot(run, steps, decisions); err != nil {
		t.Fatalf("SaveSnapshot (create) failed: %v", err)
	}

	// A second snapshot updates in place instead of duplicating.
	run.TotalSpent = 345
	run.Phase = models.PhaseCompletion
	if err := db.SaveSnapshot(run, steps, decisions); err != nil {
		t.Fatalf("SaveSnapshot (update) failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil || got == nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.TotalSpent != 345 || got.Phase != models.PhaseCompletion {
		t.Errorf("run after snapshot = %+v", got)
	}

	results, err := db.ListStepResults("run-1")
	if err != nil {
		t.Fatalf("ListStepResults failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("step results = %d rows, want 1", len(results))
	}
}

func TestDeleteRunCascades(t *testing.T) {
	db := setupTestDB(t)
	if err := db.CreateRun(sampleRun("run-1")); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := db.UpsertStepResult(&StepResult{RunID: "run-1", StepIndex: 0, Domain: models.DomainFinance}); err != nil {
		t.Fatalf("UpsertStepResult: %v", err)
	}

	if _, err := db.Exec("DELETE FROM runs WHERE id = ?", "run-1"); err != nil {
		t.Fatalf("delete run: %v", err)
	}
	results, err := db.ListStepResults("run-1")
	if err != nil {
		t.Fatalf("ListStepResults: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("step results survived run deletion: %+v", results)
	}
}
