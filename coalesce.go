package coalesce

import (
	"github.com/xraph/coalesce/id"
	"github.com/xraph/coalesce/middleware"
)

// Task is the unit of work accepted by both primitives. The context is the
// only cancellation signal a running task will ever receive; once a task
// has started nothing in this library interrupts it.
type Task = middleware.Handler

// ID is the identifier type shared by all coalesce entities.
type ID = id.ID
