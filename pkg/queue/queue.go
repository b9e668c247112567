package queue

import (
	"context"
	"sync"
)

// Queue is an unbounded, concurrency-safe blocking queue with LIFO delivery.
// The zero value is not usable; construct one with New.
type Queue[T any] struct {
	mu    sync.Mutex
	cv    *sync.Cond
	items []T
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return NewWithCapacity[T](0)
}

// NewWithCapacity creates an empty queue with room for n values before the
// backing slice has to grow.
func NewWithCapacity[T any](n int) *Queue[T] {
	if n < 0 {
		n = 0
	}
	q := &Queue[T]{items: make([]T, 0, n)}
	q.cv = sync.NewCond(&q.mu)
	return q
}

// Send appends v and wakes one waiting receiver, if any. It never blocks.
func (q *Queue[T]) Send(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.cv.Signal()
}

// Receive blocks until a value is available and removes the most recently
// sent one. It blocks forever if nothing is ever sent.
func (q *Queue[T]) Receive() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cv.Wait()
	}
	return q.popLocked()
}

// ReceiveContext is Receive with cancellation. A value that is already queued
// when the receiver wakes is returned even if ctx is done at that moment.
func (q *Queue[T]) ReceiveContext(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) > 0 {
		return q.popLocked(), nil
	}

	// Taking the lock before broadcasting means the wakeup cannot slip in
	// between the ctx check below and cv.Wait.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cv.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	for len(q.items) == 0 {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		q.cv.Wait()
	}
	return q.popLocked(), nil
}

// TryReceive removes the most recently sent value without blocking.
// ok is false when the queue is empty.
func (q *Queue[T]) TryReceive() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return v, false
	}
	return q.popLocked(), true
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	n := len(q.items)
	q.mu.Unlock()
	return n
}

func (q *Queue[T]) popLocked() T {
	last := len(q.items) - 1
	v := q.items[last]
	var zero T
	q.items[last] = zero // drop the reference held by the backing array
	q.items = q.items[:last]
	return v
}
