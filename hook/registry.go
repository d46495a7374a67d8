package hook

import (
	"context"
	"log/slog"
	"time"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type callScheduledEntry struct {
	name string
	hook CallScheduled
}

type callCoalescedEntry struct {
	name string
	hook CallCoalesced
}

type callFiredEntry struct {
	name string
	hook CallFired
}

type callCancelledEntry struct {
	name string
	hook CallCancelled
}

type itemEnqueuedEntry struct {
	name string
	hook ItemEnqueued
}

type itemStartedEntry struct {
	name string
	hook ItemStarted
}

type itemCompletedEntry struct {
	name string
	hook ItemCompleted
}

type itemSkippedEntry struct {
	name string
	hook ItemSkipped
}

type queueDrainedEntry struct {
	name string
	hook QueueDrained
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	callScheduled []callScheduledEntry
	callCoalesced []callCoalescedEntry
	callFired     []callFiredEntry
	callCancelled []callCancelledEntry
	itemEnqueued  []itemEnqueuedEntry
	itemStarted   []itemStartedEntry
	itemCompleted []itemCompletedEntry
	itemSkipped   []itemSkippedEntry
	queueDrained  []queueDrainedEntry
	shutdown      []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
// Register must not be called concurrently with emits; wire extensions
// up front, before handing the registry to a dispatcher or queue.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(CallScheduled); ok {
		r.callScheduled = append(r.callScheduled, callScheduledEntry{name, h})
	}
	if h, ok := e.(CallCoalesced); ok {
		r.callCoalesced = append(r.callCoalesced, callCoalescedEntry{name, h})
	}
	if h, ok := e.(CallFired); ok {
		r.callFired = append(r.callFired, callFiredEntry{name, h})
	}
	if h, ok := e.(CallCancelled); ok {
		r.callCancelled = append(r.callCancelled, callCancelledEntry{name, h})
	}
	if h, ok := e.(ItemEnqueued); ok {
		r.itemEnqueued = append(r.itemEnqueued, itemEnqueuedEntry{name, h})
	}
	if h, ok := e.(ItemStarted); ok {
		r.itemStarted = append(r.itemStarted, itemStartedEntry{name, h})
	}
	if h, ok := e.(ItemCompleted); ok {
		r.itemCompleted = append(r.itemCompleted, itemCompletedEntry{name, h})
	}
	if h, ok := e.(ItemSkipped); ok {
		r.itemSkipped = append(r.itemSkipped, itemSkippedEntry{name, h})
	}
	if h, ok := e.(QueueDrained); ok {
		r.queueDrained = append(r.queueDrained, queueDrainedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns the registered extensions in registration order.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Debounce event emitters
// ──────────────────────────────────────────────────

// EmitCallScheduled notifies all extensions that implement CallScheduled.
func (r *Registry) EmitCallScheduled(ctx context.Context, ev CallEvent) {
	for _, e := range r.callScheduled {
		if err := e.hook.OnCallScheduled(ctx, ev); err != nil {
			r.logHookError("OnCallScheduled", e.name, err)
		}
	}
}

// EmitCallCoalesced notifies all extensions that implement CallCoalesced.
func (r *Registry) EmitCallCoalesced(ctx context.Context, ev CallEvent) {
	for _, e := range r.callCoalesced {
		if err := e.hook.OnCallCoalesced(ctx, ev); err != nil {
			r.logHookError("OnCallCoalesced", e.name, err)
		}
	}
}

// EmitCallFired notifies all extensions that implement CallFired.
func (r *Registry) EmitCallFired(ctx context.Context, ev CallEvent, elapsed time.Duration, callErr error) {
	for _, e := range r.callFired {
		if err := e.hook.OnCallFired(ctx, ev, elapsed, callErr); err != nil {
			r.logHookError("OnCallFired", e.name, err)
		}
	}
}

// EmitCallCancelled notifies all extensions that implement CallCancelled.
func (r *Registry) EmitCallCancelled(ctx context.Context, ev CallEvent) {
	for _, e := range r.callCancelled {
		if err := e.hook.OnCallCancelled(ctx, ev); err != nil {
			r.logHookError("OnCallCancelled", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Serial queue event emitters
// ──────────────────────────────────────────────────

// EmitItemEnqueued notifies all extensions that implement ItemEnqueued.
func (r *Registry) EmitItemEnqueued(ctx context.Context, ev ItemEvent) {
	for _, e := range r.itemEnqueued {
		if err := e.hook.OnItemEnqueued(ctx, ev); err != nil {
			r.logHookError("OnItemEnqueued", e.name, err)
		}
	}
}

// EmitItemStarted notifies all extensions that implement ItemStarted.
func (r *Registry) EmitItemStarted(ctx context.Context, ev ItemEvent) {
	for _, e := range r.itemStarted {
		if err := e.hook.OnItemStarted(ctx, ev); err != nil {
			r.logHookError("OnItemStarted", e.name, err)
		}
	}
}

// EmitItemCompleted notifies all extensions that implement ItemCompleted.
func (r *Registry) EmitItemCompleted(ctx context.Context, ev ItemEvent, elapsed time.Duration, itemErr error) {
	for _, e := range r.itemCompleted {
		if err := e.hook.OnItemCompleted(ctx, ev, elapsed, itemErr); err != nil {
			r.logHookError("OnItemCompleted", e.name, err)
		}
	}
}

// EmitItemSkipped notifies all extensions that implement ItemSkipped.
func (r *Registry) EmitItemSkipped(ctx context.Context, ev ItemEvent) {
	for _, e := range r.itemSkipped {
		if err := e.hook.OnItemSkipped(ctx, ev); err != nil {
			r.logHookError("OnItemSkipped", e.name, err)
		}
	}
}

// EmitQueueDrained notifies all extensions that implement QueueDrained.
func (r *Registry) EmitQueueDrained(ctx context.Context) {
	for _, e := range r.queueDrained {
		if err := e.hook.OnQueueDrained(ctx); err != nil {
			r.logHookError("OnQueueDrained", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block execution.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
