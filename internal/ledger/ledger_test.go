package ledger

import (
	"errors"
	"sync"
	"testing"
)

func TestReserveCommitRelease(t *testing.T) {
	l := New()
	l.Allocate("finance", 100)

	id, err := l.Reserve("finance", 45)
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	if got := l.Remaining("finance"); got != 55 {
		t.Errorf("Remaining() after reserve = %v, want 55", got)
	}
	if got := l.Spent("finance"); got != 0 {
		t.Errorf("Spent() before commit = %v, want 0", got)
	}

	if err := l.Commit(id); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if got := l.Spent("finance"); got != 45 {
		t.Errorf("Spent() after commit = %v, want 45", got)
	}
	if got := l.Remaining("finance"); got != 55 {
		t.Errorf("Remaining() after commit = %v, want 55", got)
	}
}

func TestReleaseReturnsHeadroom(t *testing.T) {
	l := New()
	l.Allocate("marketing", 100)

	id, err := l.Reserve("marketing", 80)
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	if err := l.Release(id); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if got := l.Remaining("marketing"); got != 100 {
		t.Errorf("Remaining() after release = %v, want 100", got)
	}
	if got := l.TotalSpent(); got != 0 {
		t.Errorf("TotalSpent() after release = %v, want 0", got)
	}
}

func TestReserveRejectsOverdraft(t *testing.T) {
	tests := []struct {
		name      string
		allocated float64
		first     float64
		second    float64
	}{
		{"single overdraft", 100, 101, 0},
		{"hold counts against headroom", 100, 60, 50},
		{"exact then one more", 100, 100, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := New()
			l.Allocate("eng", tc.allocated)

			if tc.second == 0 {
				if _, err := l.Reserve("eng", tc.first); !errors.Is(err, ErrInsufficientBudget) {
					t.Fatalf("Reserve() error = %v, want ErrInsufficientBudget", err)
				}
				return
			}

			if _, err := l.Reserve("eng", tc.first); err != nil {
				t.Fatalf("first Reserve() error: %v", err)
			}
			if _, err := l.Reserve("eng", tc.second); !errors.Is(err, ErrInsufficientBudget) {
				t.Fatalf("second Reserve() error = %v, want ErrInsufficientBudget", err)
			}
		})
	}
}

func TestReserveRejectsBadInput(t *testing.T) {
	l := New()
	l.Allocate("eng", 100)

	if _, err := l.Reserve("eng", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
	if _, err := l.Reserve("eng", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want ErrInvalidAmount", err)
	}
	if _, err := l.Reserve("nobody", 10); !errors.Is(err, ErrUnknownActor) {
		t.Errorf("unknown actor error = %v, want ErrUnknownActor", err)
	}
}

func TestSettledReservationIsFinal(t *testing.T) {
	l := New()
	l.Allocate("legal", 100)

	id, err := l.Reserve("legal", 30)
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	if err := l.Commit(id); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	if err := l.Commit(id); !errors.Is(err, ErrReservationSettled) {
		t.Errorf("double Commit() error = %v, want ErrReservationSettled", err)
	}
	if err := l.Release(id); !errors.Is(err, ErrReservationSettled) {
		t.Errorf("Release() after Commit() error = %v, want ErrReservationSettled", err)
	}
	if err := l.Commit("no-such-id"); !errors.Is(err, ErrUnknownReservation) {
		t.Errorf("unknown Commit() error = %v, want ErrUnknownReservation", err)
	}

	// Spend is unchanged by the failed calls.
	if got := l.Spent("legal"); got != 30 {
		t.Errorf("Spent() = %v, want 30", got)
	}
}

func TestTotalsMatchPerActorSums(t *testing.T) {
	l := New()
	l.Allocate("finance", 200)
	l.Allocate("marketing", 300)

	ops := []struct {
		actor   string
		amount  float64
		commit  bool
		release bool
	}{
		{"finance", 50, true, false},
		{"marketing", 120, true, false},
		{"marketing", 80, false, true},
		{"finance", 25, true, false},
	}

	for _, op := range ops {
		id, err := l.Reserve(op.actor, op.amount)
		if err != nil {
			t.Fatalf("Reserve(%s, %v) error: %v", op.actor, op.amount, err)
		}
		if op.commit {
			if err := l.Commit(id); err != nil {
				t.Fatalf("Commit() error: %v", err)
			}
		}
		if op.release {
			if err := l.Release(id); err != nil {
				t.Fatalf("Release() error: %v", err)
			}
		}

		// Invariants hold after every operation.
		sum := l.Spent("finance") + l.Spent("marketing")
		if sum != l.TotalSpent() {
			t.Fatalf("sum of spent %v != TotalSpent %v", sum, l.TotalSpent())
		}
		for _, actor := range []string{"finance", "marketing"} {
			if l.Remaining(actor) < 0 {
				t.Fatalf("negative remaining for %s", actor)
			}
		}
	}

	if got := l.TotalSpent(); got != 195 {
		t.Errorf("TotalSpent() = %v, want 195", got)
	}
	if got := l.TotalRemaining(); got != 305 {
		t.Errorf("TotalRemaining() = %v, want 305", got)
	}
}

func TestStatusThresholds(t *testing.T) {
	tests := []struct {
		name  string
		spend float64
		want  BudgetStatus
	}{
		{"ok under threshold", 500, BudgetOK},
		{"warning at threshold", 800, BudgetWarning},
		{"exhausted at full spend", 1000, BudgetExhausted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := New()
			l.Allocate("exec", 1000)
			id, err := l.Reserve("exec", tc.spend)
			if err != nil {
				t.Fatalf("Reserve() error: %v", err)
			}
			if err := l.Commit(id); err != nil {
				t.Fatalf("Commit() error: %v", err)
			}
			if got := l.Status(); got != tc.want {
				t.Errorf("Status() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConcurrentReservesRespectCeiling(t *testing.T) {
	l := New()
	l.Allocate("eng", 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := l.Reserve("eng", 10)
			if err != nil {
				return
			}
			_ = l.Commit(id)
		}()
	}
	wg.Wait()

	if got := l.Spent("eng"); got > 100 {
		t.Errorf("Spent() = %v exceeds allocation 100", got)
	}
	if got := l.Remaining("eng"); got < 0 {
		t.Errorf("Remaining() = %v is negative", got)
	}
}

func TestReset(t *testing.T) {
	l := New()
	l.Allocate("finance", 100)
	id, _ := l.Reserve("finance", 40)
	_ = l.Commit(id)

	l.Reset()

	if got := l.TotalSpent(); got != 0 {
		t.Errorf("TotalSpent() after reset = %v, want 0", got)
	}
	if got := l.TotalAllocated(); got != 0 {
		t.Errorf("TotalAllocated() after reset = %v, want 0", got)
	}
}
