package serial

import (
	"sync/atomic"
	"time"

	"github.com/xraph/coalesce"
	"github.com/xraph/coalesce/hook"
	"github.com/xraph/coalesce/id"
)

// Item states. Queued→Cancelled and Queued→Running are CAS transitions;
// Running→Done is unconditional and failure-tolerant.
const (
	stateQueued int32 = iota
	stateCancelled
	stateRunning
	stateDone
)

// item is one unit of queued work.
type item struct {
	id      id.ItemID
	name    string
	delay   time.Duration
	timeout time.Duration
	task    coalesce.Task

	state atomic.Int32

	// skip is closed when the item is cancelled, interrupting a delay wait.
	skip chan struct{}

	// done is closed once the item leaves the queue for good: after its
	// action finished, or when it was skipped or cleared.
	done chan struct{}
}

// cancel moves the item to Cancelled if it has not started running.
// Idempotent; reports whether this call performed the transition.
func (it *item) cancel() bool {
	if it.state.CompareAndSwap(stateQueued, stateCancelled) {
		close(it.skip)
		return true
	}
	return false
}

func (it *item) event() hook.ItemEvent {
	return hook.ItemEvent{ID: it.id, Name: it.name, Delay: it.delay}
}

// ItemOption configures a single enqueued item.
type ItemOption func(*item)

// WithItemID sets a caller-supplied identifier instead of a fresh one.
func WithItemID(itemID id.ItemID) ItemOption {
	return func(it *item) { it.id = itemID }
}

// WithDelay sets how long the item waits once it reaches the head of the
// queue before its action runs. Negative values are treated as zero.
func WithDelay(d time.Duration) ItemOption {
	return func(it *item) {
		if d < 0 {
			d = 0
		}
		it.delay = d
	}
}

// WithName sets a human-readable name used in logs, hooks and middleware.
func WithName(name string) ItemOption {
	return func(it *item) { it.name = name }
}

// WithTimeout sets the Timeout value passed to the middleware chain for
// this item. It has effect only when middleware.Timeout is in the chain.
func WithTimeout(timeout time.Duration) ItemOption {
	return func(it *item) { it.timeout = timeout }
}

// Handle refers to an enqueued item.
type Handle struct {
	q  *Queue
	it *item
}

// ID returns the item's identifier.
func (h *Handle) ID() id.ItemID { return h.it.id }

// Cancel marks the item cancelled if it has not started running.
// Equivalent to Queue.Cancel with the item's ID.
func (h *Handle) Cancel() { h.q.cancelItem(h.it) }

// Done returns a channel closed once the item has left the queue: after
// its action ran, or after it was skipped or cleared.
func (h *Handle) Done() <-chan struct{} { return h.it.done }
