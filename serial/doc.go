// Package serial provides a sequential task queue: actions are accepted
// from any number of concurrent producers and executed strictly one at a
// time, in submission order, by a single logical worker.
//
// Each item may carry a delay, measured from the moment the item reaches
// the head of the queue (not from enqueue time). The delay wait is a
// cancellation point: an item cancelled while waiting is skipped. Once an
// action has started nothing interrupts it; cancellation racing with the
// instant execution begins is best-effort.
//
// The worker starts on the first enqueue and terminates when it finds the
// queue empty; the Idle/Draining transition is protected by the same lock
// as the queue contents, so at most one worker is ever active per queue.
package serial
