package livesync

import (
	"context"
	"sync"
)

// itemKind distinguishes queued work.
type itemKind int

const (
	itemEvent itemKind = iota + 1
	itemConnect
	itemDisconnect
	itemCommand
)

// item is one unit of work for the loop.
type item struct {
	kind    itemKind
	event   Event
	command func(context.Context)
}

// workQueue is a thread-safe FIFO queue feeding the loop.
//
// Unbounded: transports must never block on a slow renderer.
//
// The signal channel (buffered, size 1) coalesces wake-ups and is closed by
// Close so a waiting loop notices shutdown.
type workQueue struct {
	mu     sync.Mutex
	items  []item
	closed bool
	signal chan struct{}
}

func newWorkQueue() *workQueue {
	return &workQueue{
		items:  make([]item, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an item to the back of the queue.
// Returns false if the queue is closed.
func (q *workQueue) Enqueue(it item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, it)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front item without blocking.
func (q *workQueue) TryDequeue() (item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return item{}, false
	}

	it := q.items[0]
	// Drop the reference so the payload can be collected.
	q.items[0] = item{}

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}

	return it, true
}

// Wait returns a channel that signals when items may be available.
func (q *workQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *workQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops further enqueues and wakes the loop.
func (q *workQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
