package router

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO shared by many producers and one consumer.
// The backing ring doubles once it is 70% full, so Push never blocks.
type Queue[T any] struct {
	mu     sync.Mutex
	ring   []T
	head   int
	count  int
	closed bool
	wake   chan struct{}

	pushed int64
	popped int64
	grows  int
}

// QueueStats contains queue statistics.
type QueueStats struct {
	Len      int
	Capacity int
	Pushed   int64
	Popped   int64
	Grows    int
}

// NewQueue creates a queue with the given initial capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 2 {
		capacity = 2
	}
	return &Queue[T]{
		ring: make([]T, capacity),
		wake: make(chan struct{}, 1),
	}
}

// Push appends an item. It returns false once the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if (q.count+1)*10 >= len(q.ring)*7 {
		q.grow()
	}
	q.ring[(q.head+q.count)%len(q.ring)] = item
	q.count++
	q.pushed++
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Pop removes the oldest item, blocking until one is available. It returns
// false when ctx is done or the queue is closed and drained.
func (q *Queue[T]) Pop(ctx context.Context) (T, bool) {
	for {
		if item, ok := q.TryPop(); ok {
			return item, true
		}

		q.mu.Lock()
		done := q.closed && q.count == 0
		q.mu.Unlock()
		if done {
			var zero T
			return zero, false
		}

		select {
		case <-q.wake:
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// TryPop removes the oldest item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.count == 0 {
		return zero, false
	}
	item := q.ring[q.head]
	q.ring[q.head] = zero
	q.head = (q.head + 1) % len(q.ring)
	q.count--
	q.popped++
	return item, true
}

// Close rejects further pushes. Items already queued can still be popped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:      q.count,
		Capacity: len(q.ring),
		Pushed:   q.pushed,
		Popped:   q.popped,
		Grows:    q.grows,
	}
}

// grow doubles the ring and unwraps it to start at index 0. Caller holds mu.
func (q *Queue[T]) grow() {
	next := make([]T, len(q.ring)*2)
	n := copy(next, q.ring[q.head:])
	if n < q.count {
		copy(next[n:], q.ring[:q.count-n])
	}
	q.ring = next
	q.head = 0
	q.grows++
}
