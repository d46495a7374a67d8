// Package middleware provides composable middleware for task execution.
// Middleware wraps task calls synchronously and can modify execution
// (recover from panics, log, enforce timeouts, add tracing, etc.).
//
// Both the debounce dispatcher and the serial queue apply a middleware
// chain around every action they run.
package middleware

import (
	"context"
	"time"

	"github.com/xraph/coalesce/id"
)

// Source values identify which primitive is executing a task.
const (
	SourceDebounce = "debounce"
	SourceSerial   = "serial"
)

// Info describes the task being executed. It is passed by value to every
// middleware in the chain.
type Info struct {
	// ID is the pending-call or queue-item identifier.
	ID id.ID

	// Name is the debounce key or the caller-supplied item name.
	Name string

	// Source is SourceDebounce or SourceSerial.
	Source string

	// Delay is the delay the task waited before running.
	Delay time.Duration

	// Timeout is the per-task execution deadline. Zero means none.
	Timeout time.Duration
}

// Handler is the terminal function that executes task logic.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic.
// It receives the current context, the task being executed, and the
// next handler to call. Middleware MUST call next to continue the chain
// (unless short-circuiting on error).
type Middleware func(ctx context.Context, info Info, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, timeout) executes as:
//
//	logging → recover → timeout → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, info Info, next Handler) error {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, info, prev)
			}
		}
		return h(ctx)
	}
}
