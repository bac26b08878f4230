// Package policy defines configurable policy parameters for orchestrator
// behavior. This centralizes threshold and timing values so they can be
// configured and tested instead of living as magic numbers in the
// execution loop.
package policy

import "time"

// Config contains all configurable policy parameters for the orchestrator.
type Config struct {
	// Approval policies
	Approval ApprovalPolicy

	// Loop policies
	Loop LoopPolicy

	// Event emission policies
	Events EventsPolicy
}

// ApprovalPolicy controls the human-approval workflow.
type ApprovalPolicy struct {
	// PendingTimeout is how long a payment request may stay pending
	// before the overdue sweep expires it.
	PendingTimeout time.Duration
}

// LoopPolicy controls run loop behavior.
type LoopPolicy struct {
	// TickInterval is the delay between orchestrator ticks while
	// approvals are outstanding.
	TickInterval time.Duration
}

// EventsPolicy controls progress event emission.
type EventsPolicy struct {
	// BufferSize is the buffer size for the event channel.
	BufferSize int
}

// Default returns the default policy configuration.
func Default() *Config {
	return &Config{
		Approval: ApprovalPolicy{
			PendingTimeout: 24 * time.Hour,
		},
		Loop: LoopPolicy{
			TickInterval: 200 * time.Millisecond,
		},
		Events: EventsPolicy{
			BufferSize: 64,
		},
	}
}

// Validate checks that policy values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Approval.PendingTimeout <= 0 {
		c.Approval.PendingTimeout = 24 * time.Hour
	}
	if c.Loop.TickInterval < 10*time.Millisecond {
		c.Loop.TickInterval = 200 * time.Millisecond
	}
	if c.Events.BufferSize < 1 {
		c.Events.BufferSize = 64
	}
	return nil
}
