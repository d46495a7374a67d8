package coalesce

import "errors"

var (
	// ErrNilTask is returned when a nil task is scheduled or enqueued.
	ErrNilTask = errors.New("coalesce: nil task")

	// ErrQueueClosed is returned by Enqueue after the queue has been closed.
	ErrQueueClosed = errors.New("coalesce: queue closed")
)
