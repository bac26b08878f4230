// Package ledger provides the budget accounting for an orchestration
// run. All spending flows through a two-phase reserve/commit protocol so
// that an actor's spend can never exceed its allocation, even
// transiently, and failed work returns its reservation to headroom.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Errors returned by ledger operations. ErrInsufficientBudget is a
// business condition; the others indicate a call-ordering bug and must
// not be swallowed by callers.
var (
	// ErrInsufficientBudget indicates the reservation would exceed the
	// actor's allocation.
	ErrInsufficientBudget = errors.New("insufficient budget")
	// ErrInvalidAmount indicates a non-positive reservation amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrUnknownActor indicates the actor has no allocation.
	ErrUnknownActor = errors.New("no allocation for actor")
	// ErrUnknownReservation indicates the reservation ID does not exist.
	ErrUnknownReservation = errors.New("unknown reservation")
	// ErrReservationSettled indicates the reservation was already
	// committed or released.
	ErrReservationSettled = errors.New("reservation already settled")
)

// BudgetStatus represents aggregate budget consumption.
type BudgetStatus int

const (
	// BudgetOK indicates usage is below the warning threshold.
	BudgetOK BudgetStatus = iota
	// BudgetWarning indicates usage is between warning and exhaustion.
	BudgetWarning
	// BudgetExhausted indicates the total budget is fully consumed.
	BudgetExhausted
)

// String returns a human-readable representation of the budget status.
func (s BudgetStatus) String() string {
	switch s {
	case BudgetOK:
		return "OK"
	case BudgetWarning:
		return "Warning"
	case BudgetExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// DefaultWarningThreshold is the usage fraction at which warnings begin.
const DefaultWarningThreshold = 0.80

type allocation struct {
	allocated float64
	spent     float64
	reserved  float64
}

type reservation struct {
	actorID string
	amount  float64
	settled bool
}

// Ledger tracks per-actor allocations, holds, and committed spend for
// one orchestration run. All methods are safe for concurrent use; a
// reserve/commit pair for one actor never observes a partial mutation
// from another.
type Ledger struct {
	mu               sync.Mutex
	allocations      map[string]*allocation
	reservations     map[string]*reservation
	warningThreshold float64
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		allocations:      make(map[string]*allocation),
		reservations:     make(map[string]*reservation),
		warningThreshold: DefaultWarningThreshold,
	}
}

// Allocate seeds the actor's ceiling. Re-allocating an actor replaces
// its ceiling; committed spend is preserved.
func (l *Ledger) Allocate(actorID string, amount float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.allocations[actorID]; ok {
		a.allocated = amount
		return
	}
	l.allocations[actorID] = &allocation{allocated: amount}
}

// Reserve places a provisional hold on the actor's headroom and returns
// a reservation ID. The hold counts against the allocation immediately
// so a later Commit can never overdraw.
func (l *Ledger) Reserve(actorID string, amount float64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount <= 0 {
		return "", fmt.Errorf("reserve %v for %s: %w", amount, actorID, ErrInvalidAmount)
	}
	a, ok := l.allocations[actorID]
	if !ok {
		return "", fmt.Errorf("reserve for %s: %w", actorID, ErrUnknownActor)
	}
	if a.spent+a.reserved+amount > a.allocated {
		return "", fmt.Errorf("reserve %v for %s (remaining %v): %w",
			amount, actorID, a.allocated-a.spent-a.reserved, ErrInsufficientBudget)
	}

	id := uuid.New().String()
	a.reserved += amount
	l.reservations[id] = &reservation{actorID: actorID, amount: amount}
	return id, nil
}

// Commit converts a reservation into committed spend. Committing an
// unknown or settled reservation is a call-ordering bug.
func (l *Ledger) Commit(reservationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.openReservation(reservationID)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	a := l.allocations[r.actorID]
	a.reserved -= r.amount
	a.spent += r.amount
	r.settled = true
	return nil
}

// Release returns a reservation's hold to headroom. Failed spend is not
// sunk cost. Releasing an unknown or settled reservation is a
// call-ordering bug.
func (l *Ledger) Release(reservationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.openReservation(reservationID)
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}

	l.allocations[r.actorID].reserved -= r.amount
	r.settled = true
	return nil
}

// openReservation returns the reservation if it exists and is still
// open. Must be called with the lock held.
func (l *Ledger) openReservation(id string) (*reservation, error) {
	r, ok := l.reservations[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownReservation)
	}
	if r.settled {
		return nil, fmt.Errorf("%s: %w", id, ErrReservationSettled)
	}
	return r, nil
}

// Remaining returns the actor's unreserved headroom. Unknown actors
// have zero headroom.
func (l *Ledger) Remaining(actorID string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.allocations[actorID]
	if !ok {
		return 0
	}
	return a.allocated - a.spent - a.reserved
}

// Spent returns the actor's committed spend.
func (l *Ledger) Spent(actorID string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.allocations[actorID]
	if !ok {
		return 0
	}
	return a.spent
}

// TotalSpent returns committed spend summed across all actors.
func (l *Ledger) TotalSpent() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalSpentLocked()
}

func (l *Ledger) totalSpentLocked() float64 {
	var total float64
	for _, a := range l.allocations {
		total += a.spent
	}
	return total
}

// TotalRemaining returns unreserved headroom summed across all actors.
func (l *Ledger) TotalRemaining() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, a := range l.allocations {
		total += a.allocated - a.spent - a.reserved
	}
	return total
}

// TotalAllocated returns the sum of all actors' ceilings.
func (l *Ledger) TotalAllocated() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, a := range l.allocations {
		total += a.allocated
	}
	return total
}

// Status returns the aggregate consumption status across all actors.
func (l *Ledger) Status() BudgetStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	var allocated float64
	for _, a := range l.allocations {
		allocated += a.allocated
	}
	if allocated <= 0 {
		return BudgetOK
	}

	percentage := l.totalSpentLocked() / allocated
	if percentage >= 1.0 {
		return BudgetExhausted
	}
	if percentage >= l.warningThreshold {
		return BudgetWarning
	}
	return BudgetOK
}

// Reset clears all allocations and reservations. Used at the start of a
// new orchestration run; never called mid-run.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.allocations = make(map[string]*allocation)
	l.reservations = make(map[string]*reservation)
}
