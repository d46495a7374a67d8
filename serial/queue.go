package serial

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/xraph/coalesce"
	"github.com/xraph/coalesce/hook"
	"github.com/xraph/coalesce/id"
	"github.com/xraph/coalesce/middleware"
)

// Queue runs enqueued actions strictly one at a time, in submission order,
// regardless of caller concurrency. It is safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	items    []*item
	current  *item
	draining bool
	closed   bool

	wg sync.WaitGroup

	// baseCtx is the parent context of every executed action. It is
	// cancelled only when Close gives up waiting for the in-flight action.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	logger      *slog.Logger
	hooks       *hook.Registry
	chain       middleware.Middleware
	userMws     []middleware.Middleware
	limiter     *rate.Limiter
	taskTimeout time.Duration
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the queue's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) { q.logger = logger }
}

// WithHooks sets the lifecycle extension registry.
func WithHooks(hooks *hook.Registry) Option {
	return func(q *Queue) { q.hooks = hooks }
}

// WithMiddleware appends middleware applied around every executed action,
// innermost last. A Recover middleware is always the outermost wrapper so
// a panicking action can never stop the worker.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(q *Queue) { q.userMws = append(q.userMws, mws...) }
}

// WithRateLimit caps the sustained rate at which the worker starts actions,
// as actions per second with the given burst. Zero or negative perSecond
// disables the limit. Ordering is unaffected; the worker simply waits for
// the token bucket between items.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(q *Queue) {
		if perSecond <= 0 {
			q.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		q.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTaskTimeout sets the default Timeout passed to the middleware chain
// for items that don't set their own via WithTimeout. It has effect only
// when middleware.Timeout is in the chain.
func WithTaskTimeout(timeout time.Duration) Option {
	return func(q *Queue) { q.taskTimeout = timeout }
}

// New creates a Queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.hooks == nil {
		q.hooks = hook.NewRegistry(q.logger)
	}
	chain := make([]middleware.Middleware, 0, len(q.userMws)+1)
	chain = append(chain, middleware.Recover(q.logger))
	chain = append(chain, q.userMws...)
	q.chain = middleware.Chain(chain...)
	q.baseCtx, q.baseCancel = context.WithCancel(context.Background())
	return q
}

// Enqueue appends an action to the tail of the queue and starts the worker
// if it is idle. The returned Handle identifies the item and can cancel it
// or wait for it to leave the queue.
//
// The item's delay (WithDelay) is measured from the moment the item
// reaches the head of the queue, not from enqueue time. Action failures
// are logged and never propagated; they do not stop the worker.
func (q *Queue) Enqueue(task coalesce.Task, opts ...ItemOption) (*Handle, error) {
	if task == nil {
		return nil, coalesce.ErrNilTask
	}

	it := &item{
		id:      id.NewItemID(),
		timeout: q.taskTimeout,
		task:    task,
		skip:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(it)
	}
	if it.name == "" {
		it.name = it.id.String()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, coalesce.ErrQueueClosed
	}
	q.items = append(q.items, it)
	start := !q.draining
	if start {
		q.draining = true
		q.wg.Add(1)
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
	q.hooks.EmitItemEnqueued(context.Background(), it.event())

	return &Handle{q: q, it: it}, nil
}

// Cancel marks the item with the given ID cancelled, if it has not started
// running. The item keeps its queue position until the worker reaches and
// skips it. Unknown, running, or finished IDs are a no-op.
func (q *Queue) Cancel(itemID id.ItemID) {
	q.mu.Lock()
	var target *item
	if q.current != nil && q.current.id.Equal(itemID) {
		target = q.current
	} else {
		for _, it := range q.items {
			if it.id.Equal(itemID) {
				target = it
				break
			}
		}
	}
	q.mu.Unlock()

	if target != nil {
		q.cancelItem(target)
	}
}

func (q *Queue) cancelItem(it *item) {
	if it.cancel() {
		q.logger.Debug("item cancelled",
			slog.String("item_id", it.id.String()),
			slog.String("item_name", it.name),
		)
	}
}

// CancelAll clears every not-yet-started item. The head item is cancelled
// even if it is already waiting out its delay; an action that has begun
// executing runs to completion, after which the worker finds an empty
// queue and stops. The queue remains usable afterwards.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	cleared := q.items
	q.items = nil
	current := q.current
	q.mu.Unlock()

	for _, it := range cleared {
		it.cancel()
		q.hooks.EmitItemSkipped(context.Background(), it.event())
		close(it.done)
	}
	if current != nil {
		q.cancelItem(current)
	}
}

// Close refuses further enqueues, cancels all pending items, and waits for
// the worker to finish. If ctx expires first, the in-flight action's
// context is cancelled and Close keeps waiting for it to return; actions
// that never observe their context block Close indefinitely.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.CancelAll()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		q.logger.Warn("queue shutdown timed out, cancelling running action")
		q.baseCancel()
		<-done
	}

	q.hooks.EmitShutdown(context.Background())
	return nil
}

// Len returns the number of items waiting in the queue, excluding an item
// the worker has already taken.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// drain is the worker loop. Exactly one drain goroutine is active while
// the queue is non-empty.
func (q *Queue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			q.hooks.EmitQueueDrained(context.Background())
			return
		}
		it := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		q.current = it
		q.mu.Unlock()

		q.process(it)

		q.mu.Lock()
		q.current = nil
		q.mu.Unlock()
	}
}

// process runs a single popped item through its delay wait, final
// cancellation check, and action.
func (q *Queue) process(it *item) {
	defer close(it.done)

	if it.state.Load() == stateCancelled {
		q.hooks.EmitItemSkipped(context.Background(), it.event())
		return
	}

	if it.delay > 0 {
		timer := time.NewTimer(it.delay)
		select {
		case <-timer.C:
		case <-it.skip:
			timer.Stop()
			q.hooks.EmitItemSkipped(context.Background(), it.event())
			return
		}
	}

	if q.limiter != nil {
		if err := q.limiter.Wait(q.baseCtx); err != nil {
			// Only possible when Close cancelled the base context.
			it.cancel()
			q.hooks.EmitItemSkipped(context.Background(), it.event())
			return
		}
	}

	// The Queued→Running transition doubles as the final cancellation
	// re-check: a cancel that won the CAS race means the action never runs.
	if !it.state.CompareAndSwap(stateQueued, stateRunning) {
		q.hooks.EmitItemSkipped(context.Background(), it.event())
		return
	}

	q.hooks.EmitItemStarted(context.Background(), it.event())

	info := middleware.Info{
		ID:      it.id,
		Name:    it.name,
		Source:  middleware.SourceSerial,
		Delay:   it.delay,
		Timeout: it.timeout,
	}

	start := time.Now()
	err := q.chain(q.baseCtx, info, it.task)
	elapsed := time.Since(start)
	it.state.Store(stateDone)

	if err != nil {
		q.logger.Error("queued action failed",
			slog.String("item_id", it.id.String()),
			slog.String("item_name", it.name),
			slog.String("error", err.Error()),
		)
	}

	q.hooks.EmitItemCompleted(context.Background(), it.event(), elapsed, err)
}
