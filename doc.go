// Package coalesce provides two small in-process coordination primitives
// for taming concurrent, overlapping asynchronous work:
//
//   - debounce.Dispatcher collapses rapid schedules for the same key into a
//     single deferred execution of only the latest one ("latest wins").
//   - serial.Queue runs submitted actions strictly one at a time, in
//     submission order, with per-item delay and cancellation ("all run,
//     in order").
//
// Both are plain, independently constructible values designed to be owned
// by the application's composition root and injected where needed. Neither
// depends on the other.
//
// # Quick Start
//
//	d := debounce.New(debounce.WithLogger(logger))
//	d.Schedule("search", 300*time.Millisecond, func(ctx context.Context) error {
//	    return runSearch(ctx, query)
//	})
//
//	q := serial.New(serial.WithLogger(logger))
//	h, _ := q.Enqueue(verifyReceipt, serial.WithName("verify-receipt"))
//	<-h.Done()
//
// Cancellation is cooperative: tokens are consulted at defined suspension
// points (before and after delay waits), never by interrupting a running
// action. Action failures are logged and isolated; they never reach the
// caller that scheduled the work and never stop the queue's worker.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based
// identifiers ("call_..." and "item_...").
package coalesce
