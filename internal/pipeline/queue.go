package pipeline

import (
	"sync"

	"github.com/mamadbah2/flockbook/internal/store"
)

// actionQueue is an unbounded FIFO of observed actions. Enqueue never blocks,
// so the store's dispatch path is never held up by the pipeline.
type actionQueue struct {
	mu      sync.Mutex
	actions []store.Action
	closed  bool
	signal  chan struct{} // buffered, size 1; closed on Close
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		actions: make([]store.Action, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue appends a to the queue. Returns false once the queue is closed.
func (q *actionQueue) Enqueue(a store.Action) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.actions = append(q.actions, a)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the front action without blocking.
func (q *actionQueue) TryDequeue() (store.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.actions) == 0 {
		return nil, false
	}
	a := q.actions[0]
	q.actions[0] = nil
	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}
	return a, true
}

// Wait signals that actions may be available. The channel is closed on Close.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Drained reports whether the queue is closed and has nothing left to deliver.
func (q *actionQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.actions) == 0
}

// Len returns the number of queued actions.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Close stops accepting actions. Already queued actions can still be dequeued.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
