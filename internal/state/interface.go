// Package state provides SQLite-based persistence for Boardroom.
package state

import (
	"io"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// RunStore handles run-level persistence operations.
type RunStore interface {
	CreateRun(r *Run) error
	GetRun(id string) (*Run, error)
	UpdateRun(r *Run) error
	ListRuns(phase *models.Phase) ([]Run, error)
	LatestRun() (*Run, error)
}

// StepResultStore handles step outcome persistence operations.
type StepResultStore interface {
	UpsertStepResult(sr *StepResult) error
	ListStepResults(runID string) ([]StepResult, error)
}

// PaymentDecisionStore handles payment decision persistence operations.
type PaymentDecisionStore interface {
	UpsertPaymentDecision(p *PaymentDecision) error
	ListPaymentDecisions(runID string, status *models.PaymentStatus) ([]PaymentDecision, error)
}

// Migrator handles database schema migrations.
// Separating this allows clients to depend only on migration functionality.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the interface for run persistence. It lets the command
// layer work with any backend without depending on the concrete SQLite
// implementation.
type Store interface {
	io.Closer
	Migrator
	RunStore
	StepResultStore
	PaymentDecisionStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store                = (*DB)(nil)
	_ Migrator             = (*DB)(nil)
	_ RunStore             = (*DB)(nil)
	_ StepResultStore      = (*DB)(nil)
	_ PaymentDecisionStore = (*DB)(nil)
)
