// Package queue provides an unbounded blocking handoff queue.
//
// Any number of goroutines may Send and Receive concurrently. Send never
// blocks; Receive suspends on a condition variable until a value is
// available.
//
// # Ordering
//
// Receive removes the most recently sent value, so a single consumer that
// drains n queued values sees them in reverse order of sending (LIFO). Code
// that needs FIFO delivery should not use this package.
//
// # Cancellation
//
// Receive has no timeout. ReceiveContext is the cancellable variant: it
// returns ctx.Err() once the context is done and nothing is queued.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package queue
