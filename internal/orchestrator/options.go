package orchestrator

import (
	"time"

	"github.com/boardroom-dev/boardroom/internal/guardrail"
	"github.com/boardroom-dev/boardroom/internal/orchestrator/policy"
)

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

// orchestratorOptions holds all optional configuration.
type orchestratorOptions struct {
	policy *policy.Config
	rules  *guardrail.Rules
	logger *DebugLogger
	now    func() time.Time
}

func defaultOptions() *orchestratorOptions {
	return &orchestratorOptions{
		policy: policy.Default(),
		logger: &DebugLogger{},
		now:    time.Now,
	}
}

// WithPolicy sets the policy configuration.
func WithPolicy(p *policy.Config) Option {
	return func(o *orchestratorOptions) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithRules sets the guardrail rule tables. Nil keeps the defaults.
func WithRules(r *guardrail.Rules) Option {
	return func(o *orchestratorOptions) { o.rules = r }
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *orchestratorOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the time source. Mainly for testing timeout behavior.
func WithClock(now func() time.Time) Option {
	return func(o *orchestratorOptions) {
		if now != nil {
			o.now = now
		}
	}
}
