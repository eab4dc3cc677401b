// Package task models the build graph's unit of work.
//
// A task's immutable declaration (label, run, key, targets) is kept
// separate from its run-state (the scheduler-owned, mutable
// Idle/Running/Done/Failed machine). Declaration values are created once
// during configuration and never mutated; RunState values are owned
// exclusively by the scheduler and keyed by Declaration ID.
package task

import "context"

// ID identifies a Declaration within a Registry.
type ID int

// Declaration is the immutable half of a task: what it produces and how to
// produce it. Declarations are built during configuration and never mutated
// afterward.
type Declaration struct {
	ID ID

	// Label is the human-readable name used in logs, e.g. "CPP objs/Player.o".
	Label string

	// Targets are every target this declaration owns. One Declaration may
	// own many targets; each target maps to exactly one Declaration.
	Targets []string

	// Run brings every declared file target up to date, assuming
	// prerequisites are already current.
	Run func(ctx context.Context) error

	// Key produces a JSON-serializable signature of inputs, outputs and
	// command parameters. Nil means this declaration is never cached
	// (used for declarations owning only abstract targets).
	Key func(ctx context.Context) (Signature, error)
}
