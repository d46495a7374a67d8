// Package debounce provides a coalescing call dispatcher: given a key, a
// delay, and an action, it guarantees that only the most recently scheduled
// action for that key fires, after the delay elapses uninterrupted by a
// newer schedule for the same key.
package debounce

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xraph/coalesce"
	"github.com/xraph/coalesce/hook"
	"github.com/xraph/coalesce/id"
	"github.com/xraph/coalesce/middleware"
)

// pendingCall is one armed deferred execution. The cancelled flag is the
// call's cancellation token: it is set under the dispatcher lock and
// consulted exactly once, when the timer fires.
type pendingCall struct {
	id        id.CallID
	key       string
	delay     time.Duration
	timer     *time.Timer
	cancelled atomic.Bool
}

func (c *pendingCall) event() hook.CallEvent {
	return hook.CallEvent{ID: c.id, Key: c.key, Delay: c.delay}
}

// Dispatcher coalesces rapid schedules for the same key into a single
// deferred execution of only the latest one. It is safe for concurrent use.
//
// A schedule issued while a previous action for the same key is already
// executing arms a fully independent execution that may overlap the
// in-flight one: once an action has passed its cancellation check it is no
// longer reachable through the registry. Callers that need executions for a
// key to serialize should run the actions through a serial.Queue.
type Dispatcher struct {
	mu    sync.Mutex
	calls map[string]*pendingCall

	logger      *slog.Logger
	hooks       *hook.Registry
	chain       middleware.Middleware
	userMws     []middleware.Middleware
	taskTimeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithHooks sets the lifecycle extension registry.
func WithHooks(hooks *hook.Registry) Option {
	return func(d *Dispatcher) { d.hooks = hooks }
}

// WithMiddleware appends middleware applied around every fired action,
// innermost last. A Recover middleware is always the outermost wrapper so
// a panicking action can never escape the dispatcher.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(d *Dispatcher) { d.userMws = append(d.userMws, mws...) }
}

// WithTaskTimeout sets the Timeout value passed to the middleware chain for
// every fired action. It has effect only when middleware.Timeout is in the
// chain; the dispatcher itself never interrupts a running action.
func WithTaskTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.taskTimeout = timeout }
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		calls:  make(map[string]*pendingCall),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.hooks == nil {
		d.hooks = hook.NewRegistry(d.logger)
	}
	chain := make([]middleware.Middleware, 0, len(d.userMws)+1)
	chain = append(chain, middleware.Recover(d.logger))
	chain = append(chain, d.userMws...)
	d.chain = middleware.Chain(chain...)
	return d
}

// Schedule arms a deferred execution of task under the given key. If an
// entry for the key is already pending, its cancellation token is set
// before the new entry is installed, atomically with respect to all other
// callers on the key; the superseded action never fires. After delay
// elapses uninterrupted the task runs exactly once and the entry is
// removed.
//
// An empty key schedules under a fresh identifier that no later call can
// coalesce with. A negative delay is treated as zero. Task failures are
// logged and never propagated; Schedule has long returned by the time the
// task runs.
func (d *Dispatcher) Schedule(key string, delay time.Duration, task coalesce.Task) error {
	if task == nil {
		return coalesce.ErrNilTask
	}
	if delay < 0 {
		delay = 0
	}

	callID := id.NewCallID()
	if key == "" {
		key = callID.String()
	}

	c := &pendingCall{id: callID, key: key, delay: delay}

	d.mu.Lock()
	prev := d.calls[key]
	if prev != nil {
		// Invalidate before install: even if the old timer has already
		// fired and is blocked on the lock, it will observe the token.
		prev.cancelled.Store(true)
		prev.timer.Stop()
	}
	d.calls[key] = c
	c.timer = time.AfterFunc(delay, func() { d.fire(c, task) })
	d.mu.Unlock()

	if prev != nil {
		d.hooks.EmitCallCoalesced(context.Background(), prev.event())
	}
	d.hooks.EmitCallScheduled(context.Background(), c.event())

	return nil
}

// fire runs on the timer goroutine after the call's delay elapsed.
func (d *Dispatcher) fire(c *pendingCall, task coalesce.Task) {
	d.mu.Lock()
	if c.cancelled.Load() || d.calls[c.key] != c {
		d.mu.Unlock()
		return
	}
	delete(d.calls, c.key)
	d.mu.Unlock()

	ctx := context.Background()
	info := middleware.Info{
		ID:      c.id,
		Name:    c.key,
		Source:  middleware.SourceDebounce,
		Delay:   c.delay,
		Timeout: d.taskTimeout,
	}

	start := time.Now()
	err := d.chain(ctx, info, task)
	elapsed := time.Since(start)

	if err != nil {
		d.logger.Error("debounced call failed",
			slog.String("key", c.key),
			slog.String("call_id", c.id.String()),
			slog.String("error", err.Error()),
		)
	}

	d.hooks.EmitCallFired(ctx, c.event(), elapsed, err)
}

// Cancel sets the cancellation token of the pending call for key, if any,
// and removes it from the registry. It is a no-op when no call is pending.
// A call whose action has already begun executing is not affected.
func (d *Dispatcher) Cancel(key string) {
	d.mu.Lock()
	c := d.calls[key]
	if c != nil {
		c.cancelled.Store(true)
		c.timer.Stop()
		delete(d.calls, key)
	}
	d.mu.Unlock()

	if c != nil {
		d.hooks.EmitCallCancelled(context.Background(), c.event())
	}
}

// CancelAll cancels every pending call and clears the registry. Actions
// already executing run to completion.
func (d *Dispatcher) CancelAll() {
	d.mu.Lock()
	cancelled := make([]*pendingCall, 0, len(d.calls))
	for key, c := range d.calls {
		c.cancelled.Store(true)
		c.timer.Stop()
		delete(d.calls, key)
		cancelled = append(cancelled, c)
	}
	d.mu.Unlock()

	for _, c := range cancelled {
		d.hooks.EmitCallCancelled(context.Background(), c.event())
	}
}

// Pending returns the number of armed, not-yet-fired calls.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}
