// Package hook defines the lifecycle extension system for coalesce.
// Extensions are notified of lifecycle events (call scheduled, call fired,
// item enqueued, item skipped, etc.) and can react to them — logging,
// metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package hook

import (
	"context"
	"time"

	"github.com/xraph/coalesce/id"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// CallEvent describes a pending call in the debounce dispatcher.
type CallEvent struct {
	ID    id.CallID
	Key   string
	Delay time.Duration
}

// ItemEvent describes an item in the serial queue.
type ItemEvent struct {
	ID    id.ItemID
	Name  string
	Delay time.Duration
}

// ──────────────────────────────────────────────────
// Debounce dispatcher lifecycle hooks
// ──────────────────────────────────────────────────

// CallScheduled is called after a call is registered with the dispatcher.
type CallScheduled interface {
	OnCallScheduled(ctx context.Context, ev CallEvent) error
}

// CallCoalesced is called when a newer schedule supersedes a pending call
// for the same key. The event describes the superseded call.
type CallCoalesced interface {
	OnCallCoalesced(ctx context.Context, ev CallEvent) error
}

// CallFired is called after a pending call's delay elapsed and its action ran.
type CallFired interface {
	OnCallFired(ctx context.Context, ev CallEvent, elapsed time.Duration, err error) error
}

// CallCancelled is called when a pending call is cancelled explicitly
// (Cancel or CancelAll), not when it is superseded.
type CallCancelled interface {
	OnCallCancelled(ctx context.Context, ev CallEvent) error
}

// ──────────────────────────────────────────────────
// Serial queue lifecycle hooks
// ──────────────────────────────────────────────────

// ItemEnqueued is called after an item is appended to the queue.
type ItemEnqueued interface {
	OnItemEnqueued(ctx context.Context, ev ItemEvent) error
}

// ItemStarted is called when the worker begins executing an item's action.
type ItemStarted interface {
	OnItemStarted(ctx context.Context, ev ItemEvent) error
}

// ItemCompleted is called after an item's action finishes, successfully or not.
type ItemCompleted interface {
	OnItemCompleted(ctx context.Context, ev ItemEvent, elapsed time.Duration, err error) error
}

// ItemSkipped is called when the worker discards a cancelled item without
// running its action.
type ItemSkipped interface {
	OnItemSkipped(ctx context.Context, ev ItemEvent) error
}

// QueueDrained is called when the worker finds the queue empty and goes idle.
type QueueDrained interface {
	OnQueueDrained(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Other lifecycle hooks
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
