// Package queue provides the hand-off queue for lost capture files.
package queue

import (
	"sync"

	"github.com/eliteGoblin/capmon/internal/domain"
)

// DefaultCapacity bounds the queue when no capacity is configured.
const DefaultCapacity = 1024

// LostFileQueue is a bounded, thread-safe FIFO of file paths.
//
// The scan engine is the producer and must never block: TryPut is
// non-blocking and reports a full queue to the caller, which drops the
// item for that cycle. The downstream consumer drains Items.
type LostFileQueue struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

// NewLostFileQueue creates a queue with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewLostFileQueue(capacity int) *LostFileQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LostFileQueue{
		ch: make(chan string, capacity),
	}
}

// TryPut offers a path to the queue without blocking.
// Returns false if the queue is full or closed.
func (q *LostFileQueue) TryPut(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	select {
	case q.ch <- path:
		return true
	default:
		return false
	}
}

// Items returns the consumer side of the queue. The channel is closed
// when Close is called, after any buffered items are drained.
func (q *LostFileQueue) Items() <-chan string {
	return q.ch
}

// Len returns the number of buffered items.
func (q *LostFileQueue) Len() int {
	return len(q.ch)
}

// Close marks the queue closed. Subsequent TryPut calls return false.
// Safe to call more than once.
func (q *LostFileQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Ensure LostFileQueue implements domain.LostFileSink.
var _ domain.LostFileSink = (*LostFileQueue)(nil)
