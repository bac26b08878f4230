// Package approval manages the lifecycle of payment-approval requests.
// The gate never resolves a request on its own: every decision comes
// from an external authority, or from the overdue sweep once the
// configured timeout elapses. Status transitions are one-shot; a second
// decision on a terminal request is a programming error.
package approval

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// ErrNotFound is returned when no request exists with the given ID.
var ErrNotFound = errors.New("payment request not found")

// DefaultTimeout is how long a request stays Pending before the overdue
// sweep expires it.
const DefaultTimeout = 24 * time.Hour

// Gate tracks payment requests awaiting a human decision. It is safe
// for concurrent use: Decide may be called from a different goroutine
// than the one running the orchestration loop, and a concurrent
// Decide/ExpireOverdue race on the same request resolves to whichever
// lands first.
type Gate struct {
	mu       sync.Mutex
	requests map[string]*models.PaymentRequest
	timeout  time.Duration
	now      func() time.Time
}

// New creates a gate with the given pending timeout. A non-positive
// timeout falls back to DefaultTimeout.
func New(timeout time.Duration) *Gate {
	return NewWithClock(timeout, time.Now)
}

// NewWithClock creates a gate with the given pending timeout and time
// source. Creation and decision timestamps come from the same clock the
// caller passes to ExpireOverdue, so timeout behavior is fully under
// the caller's control.
func NewWithClock(timeout time.Duration, now func() time.Time) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Gate{
		requests: make(map[string]*models.PaymentRequest),
		timeout:  timeout,
		now:      now,
	}
}

// Request stores a new pending payment request and returns it. The gate
// assigns the ID, status, and creation time.
func (g *Gate) Request(requestedBy string, paymentType models.PaymentType, amount float64, description string, risk models.RiskLevel) models.PaymentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()

	req := &models.PaymentRequest{
		ID:          uuid.New().String(),
		RequestedBy: requestedBy,
		Amount:      amount,
		PaymentType: paymentType,
		Description: description,
		RiskLevel:   risk,
		Status:      models.PaymentPending,
		CreatedAt:   g.now(),
	}
	g.requests[req.ID] = req
	return *req
}

// Decide applies an external authority's decision to a pending request
// and returns the updated request. Deciding a terminal request returns
// models.ErrAlreadyDecided: the caller's call ordering is broken.
func (g *Gate) Decide(id string, approved bool, reason string) (models.PaymentRequest, error) {
	status := models.PaymentRejected
	if approved {
		status = models.PaymentApproved
	}
	return g.resolve(id, status, reason, g.now())
}

// Poll returns the current status of a request.
func (g *Gate) Poll(id string) (models.PaymentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	req, ok := g.requests[id]
	if !ok {
		return "", fmt.Errorf("poll %s: %w", id, ErrNotFound)
	}
	return req.Status, nil
}

// Get returns a copy of the request.
func (g *Gate) Get(id string) (models.PaymentRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	req, ok := g.requests[id]
	if !ok {
		return models.PaymentRequest{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return *req, nil
}

// ExpireOverdue transitions every pending request older than the
// configured timeout to Expired and returns the expired requests. It is
// invoked once per orchestration tick. Requests that were decided
// concurrently are left untouched.
func (g *Gate) ExpireOverdue(now time.Time) []models.PaymentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()

	var expired []models.PaymentRequest
	for _, req := range g.requests {
		if req.Status != models.PaymentPending {
			continue
		}
		if now.Sub(req.CreatedAt) <= g.timeout {
			continue
		}
		decided := now
		req.Status = models.PaymentExpired
		req.DecidedAt = &decided
		expired = append(expired, *req)
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].CreatedAt.Before(expired[j].CreatedAt)
	})
	return expired
}

// Pending returns copies of all undecided requests, oldest first.
func (g *Gate) Pending() []models.PaymentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()

	var pending []models.PaymentRequest
	for _, req := range g.requests {
		if req.Status == models.PaymentPending {
			pending = append(pending, *req)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending
}

// All returns copies of every request, decided or not, oldest first.
// Used to persist the full decision trail of a run.
func (g *Gate) All() []models.PaymentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()

	all := make([]models.PaymentRequest, 0, len(g.requests))
	for _, req := range g.requests {
		all = append(all, *req)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all
}

// resolve applies a terminal status under the lock, enforcing the
// one-shot transition rule.
func (g *Gate) resolve(id string, status models.PaymentStatus, reason string, at time.Time) (models.PaymentRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	req, ok := g.requests[id]
	if !ok {
		return models.PaymentRequest{}, fmt.Errorf("decide %s: %w", id, ErrNotFound)
	}
	if req.Status.Terminal() {
		return *req, fmt.Errorf("decide %s (status %s): %w", id, req.Status, models.ErrAlreadyDecided)
	}

	req.Status = status
	req.DecisionReason = reason
	req.DecidedAt = &at
	return *req, nil
}
