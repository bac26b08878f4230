package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boardroom-dev/boardroom/internal/agent"
	"github.com/boardroom-dev/boardroom/internal/approval"
	"github.com/boardroom-dev/boardroom/internal/guardrail"
	"github.com/boardroom-dev/boardroom/internal/ledger"
	"github.com/boardroom-dev/boardroom/internal/planner"
	"github.com/boardroom-dev/boardroom/internal/orchestrator/policy"
	"github.com/boardroom-dev/boardroom/pkg/models"
)

// ErrAlreadyStarted is returned when Run is called more than once on
// the same orchestrator. A run is single-use; re-planning requires a
// new run.
var ErrAlreadyStarted = errors.New("orchestration run already started")

// Orchestrator walks one dispatch plan. Steps execute strictly in
// order; a step waiting on a payment approval is deferred, not blocked,
// so later independent steps still run. Deferred steps are re-attempted
// by Tick once their approvals resolve.
type Orchestrator struct {
	runID       string
	flags       models.IntentFlags
	totalBudget float64
	registry    *agent.Registry
	ledger      *ledger.Ledger
	gate        *approval.Gate
	validator   *guardrail.Validator
	policy      *policy.Config
	emitter     *EventEmitter
	logger      *DebugLogger
	now         func() time.Time

	// executive is the tier-1 actor that invokes the directors.
	executive models.Actor

	// mu protects state, directors, and deferred.
	mu        sync.RWMutex
	state     *OrchestrationState
	directors []models.Actor
	deferred  map[int]bool

	// spendMu serializes the spend pipeline across all spends of a run.
	spendMu       sync.Mutex
	spendMemo     map[string]agent.SpendOutcome
	pendingSpends map[string]pendingSpend
	// spendSeq counts the spends issued during the current attempt of
	// each step; reset when the step is re-attempted.
	spendSeq map[int]int
}

// New creates an orchestrator for one run over the given intent and
// budget. The registry must be able to resolve a director for every
// directorate the planner can select.
func New(flags models.IntentFlags, totalBudget float64, registry *agent.Registry, opts ...Option) (*Orchestrator, error) {
	if totalBudget <= 0 {
		return nil, fmt.Errorf("total budget must be positive, got %v", totalBudget)
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	options.policy.Validate()

	o := &Orchestrator{
		runID:         uuid.New().String(),
		flags:         flags,
		totalBudget:   totalBudget,
		registry:      registry,
		ledger:        ledger.New(),
		gate:          approval.NewWithClock(options.policy.Approval.PendingTimeout, options.now),
		policy:        options.policy,
		emitter:       NewEventEmitter(options.policy.Events.BufferSize),
		logger:        options.logger,
		now:           options.now,
		executive:     agent.NewExecutiveActor(),
		deferred:      make(map[int]bool),
		spendMemo:     make(map[string]agent.SpendOutcome),
		pendingSpends: make(map[string]pendingSpend),
		spendSeq:      make(map[int]int),
	}
	o.validator = guardrail.NewValidator(options.rules, o.ledger)
	o.state = &OrchestrationState{
		RunID:       o.runID,
		Phase:       models.PhaseAnalysis,
		TotalBudget: totalBudget,
		StartedAt:   o.now(),
	}
	return o, nil
}

// RunID returns the run identifier.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Events returns the progress event channel. It is closed when the run
// reaches Completion.
func (o *Orchestrator) Events() <-chan Event {
	return o.emitter.Events()
}

// State returns a snapshot of the run state.
func (o *Orchestrator) State() OrchestrationState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state.Snapshot()
}

// Phase returns the current run phase.
func (o *Orchestrator) Phase() models.Phase {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state.Phase
}

// ListPending returns the undecided payment requests, oldest first.
// This and Decide are the whole surface an operator-facing layer needs.
func (o *Orchestrator) ListPending() []models.PaymentRequest {
	return o.gate.Pending()
}

// UpdateRules swaps the guardrail rule tables mid-run. Spends already
// decided keep their outcomes; only future evaluations see the new
// rules.
func (o *Orchestrator) UpdateRules(r *guardrail.Rules) {
	if r == nil {
		return
	}
	o.spendMu.Lock()
	defer o.spendMu.Unlock()
	o.validator = guardrail.NewValidator(r, o.ledger)
}

// ListApprovals returns every payment request the run has raised,
// decided or not, oldest first.
func (o *Orchestrator) ListApprovals() []models.PaymentRequest {
	return o.gate.All()
}

// Decide applies a human decision to a pending payment request. It is
// safe to call from a different goroutine than the one driving the run;
// the decision takes effect at the next tick. Deciding an already
// terminal request returns models.ErrAlreadyDecided.
func (o *Orchestrator) Decide(requestID string, approved bool, reason string) (models.PaymentRequest, error) {
	return o.gate.Decide(requestID, approved, reason)
}

// Run executes one full pass over the plan: analysis, planning, ledger
// seeding, then every step in order. If approvals are outstanding when
// the pass finishes, the run stays in Execution and Tick drives it the
// rest of the way. Run returns an error only for invariant violations.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Phase != models.PhaseAnalysis {
		o.mu.Unlock()
		return ErrAlreadyStarted
	}
	o.state.Phase = models.PhasePlanning

	plan := planner.Build(o.flags)
	o.state.Plan = plan
	o.state.Results = make([]*models.AgentExecutionResult, len(plan.Steps))

	// Seed the ledger: each directorate gets an equal share of the
	// total budget, owned by its director actor.
	o.ledger.Reset()
	o.directors = make([]models.Actor, len(plan.Steps))
	if len(plan.Steps) > 0 {
		share := o.totalBudget / float64(len(plan.Steps))
		for i, step := range plan.Steps {
			actor := agent.NewDirectorActor(step.ActorDomain)
			o.directors[i] = actor
			o.ledger.Allocate(actor.ID, share)
		}
	}
	o.state.Phase = models.PhaseExecution
	o.mu.Unlock()

	o.logger.Log("run %s: plan built with %d steps", o.runID, len(plan.Steps))
	o.emit(o.newEvent(EventPlanBuilt, func(e *Event) {
		e.Message = fmt.Sprintf("%d steps", len(plan.Steps))
	}))

	if err := o.executePass(ctx); err != nil {
		return err
	}
	return o.finishIfDone()
}

// Tick advances a run with outstanding approvals: it expires overdue
// requests, settles decided ones (committing or releasing their
// reservations), re-attempts the steps they deferred, and finalizes the
// run once nothing is outstanding.
func (o *Orchestrator) Tick(ctx context.Context) error {
	now := o.now()
	o.gate.ExpireOverdue(now)

	o.spendMu.Lock()
	ids := make([]string, 0, len(o.pendingSpends))
	for id := range o.pendingSpends {
		ids = append(ids, id)
	}
	o.spendMu.Unlock()

	var retry []int
	for _, id := range ids {
		o.spendMu.Lock()
		ps, tracked := o.pendingSpends[id]
		if !tracked {
			o.spendMu.Unlock()
			continue
		}
		outcome, err := o.settleLocked(id)
		o.spendMu.Unlock()
		if err != nil {
			return err
		}
		if outcome.Status != agent.SpendPending {
			retry = append(retry, ps.stepIndex)
		}
	}

	for _, stepIndex := range retry {
		o.mu.Lock()
		wasDeferred := o.deferred[stepIndex]
		delete(o.deferred, stepIndex)
		o.mu.Unlock()
		if !wasDeferred {
			continue
		}
		if err := o.executeStep(ctx, stepIndex); err != nil {
			return err
		}
	}

	return o.finishIfDone()
}

// RunToCompletion runs the plan and then ticks at the policy interval
// until the run completes or the context is cancelled.
func (o *Orchestrator) RunToCompletion(ctx context.Context) error {
	if err := o.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(o.policy.Loop.TickInterval)
	defer ticker.Stop()

	for {
		if o.Phase() == models.PhaseCompletion {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := o.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

// Report consolidates the run into its final report. It can be called
// at any time; before Completion it reflects progress so far.
func (o *Orchestrator) Report() models.FinalReport {
	state := o.State()
	return Consolidate(state, o.ledger.TotalSpent(), o.ledger.TotalRemaining())
}

// executePass attempts every step that has no final result yet,
// skipping deferred steps.
func (o *Orchestrator) executePass(ctx context.Context) error {
	o.mu.RLock()
	steps := len(o.state.Plan.Steps)
	o.mu.RUnlock()

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.mu.RLock()
		done := o.state.Results[i] != nil
		o.mu.RUnlock()
		if done {
			continue
		}
		if err := o.executeStep(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// executeStep invokes the director for one plan step and records its
// result. A pending approval defers the step; all other outcomes are
// final. The returned error is an invariant violation.
func (o *Orchestrator) executeStep(ctx context.Context, i int) error {
	o.mu.Lock()
	o.state.Cursor = i
	step := o.state.Plan.Steps[i]
	actor := o.directors[i]
	o.mu.Unlock()

	o.spendMu.Lock()
	o.spendSeq[i] = 0
	o.spendMu.Unlock()

	o.emit(o.newEvent(EventStepStarted, func(e *Event) {
		e.StepIndex = i
		e.Domain = step.ActorDomain
	}))

	if !o.executive.CanInvoke(actor) {
		return fmt.Errorf("step %d: executive cannot invoke %s actor %s", i, actor.Tier, actor.ID)
	}
	director, err := o.registry.Director(step.ActorDomain)
	if err != nil {
		return fmt.Errorf("step %d: %w", i, err)
	}

	result, err := director.Execute(ctx, actor, step, &stepToolbox{o: o, stepIndex: i, director: actor})
	if err != nil {
		return fmt.Errorf("step %d (%s): %w", i, step.ActorDomain, err)
	}

	deferred := result.BlockedReason == models.BlockedApprovalPending

	o.mu.Lock()
	r := result
	o.state.Results[i] = &r
	if deferred {
		o.deferred[i] = true
	} else {
		delete(o.deferred, i)
	}
	o.state.PendingApprovals = o.gate.Pending()
	o.mu.Unlock()

	eventType := EventStepCompleted
	if deferred {
		eventType = EventStepDeferred
	}
	o.logger.Log("step %d (%s): success=%v blocked=%q cost=%v",
		i, step.ActorDomain, result.Success, result.BlockedReason, result.CostIncurred)
	o.emit(o.newEvent(eventType, func(e *Event) {
		e.StepIndex = i
		e.Domain = step.ActorDomain
		e.Result = &r
	}))
	return nil
}

// finishIfDone moves the run through Review to Completion once every
// step has a final result and no approval is outstanding.
func (o *Orchestrator) finishIfDone() error {
	o.spendMu.Lock()
	outstanding := len(o.pendingSpends)
	o.spendMu.Unlock()

	o.mu.Lock()

	if o.state.Phase != models.PhaseExecution {
		o.mu.Unlock()
		return nil
	}

	for i, r := range o.state.Results {
		if r == nil || o.deferred[i] {
			o.mu.Unlock()
			return nil
		}
	}

	if outstanding > 0 {
		o.mu.Unlock()
		return nil
	}

	// Review: a result claiming success with nothing to show is
	// downgraded, not tolerated.
	o.state.Phase = models.PhaseReview
	for _, r := range o.state.Results {
		if r.Success && len(r.Deliverables) == 0 {
			r.Success = false
			r.BlockedReason = models.BlockedEmptyDeliverables
		}
	}

	now := o.now()
	o.state.Phase = models.PhaseCompletion
	o.state.CompletedAt = &now
	o.state.PendingApprovals = nil
	o.mu.Unlock()

	o.logger.Log("run %s completed: spent=%v remaining=%v",
		o.runID, o.ledger.TotalSpent(), o.ledger.TotalRemaining())
	o.emit(o.newEvent(EventRunCompleted, nil))
	o.emitter.Close()
	return nil
}

// newEvent builds an event carrying the run's current phase and budget
// totals. The customize hook fills event-specific fields.
func (o *Orchestrator) newEvent(eventType EventType, customize func(*Event)) Event {
	o.mu.RLock()
	phase := o.state.Phase
	o.mu.RUnlock()

	e := Event{
		Type:           eventType,
		RunID:          o.runID,
		Phase:          phase,
		StepIndex:      -1,
		TotalSpent:     o.ledger.TotalSpent(),
		TotalRemaining: o.ledger.TotalRemaining(),
		BudgetStatus:   o.ledger.Status(),
		Timestamp:      o.now(),
	}
	if customize != nil {
		customize(&e)
	}
	return e
}

// emit forwards an event to the emitter.
func (o *Orchestrator) emit(e Event) {
	o.emitter.Emit(e)
}
