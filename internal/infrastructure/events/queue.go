package events

import (
	"sync"

	"github.com/alexisbeaulieu97/specdriver/internal/ports"
)

// MemoryQueue buffers envelopes in order for an in-process consumer. Enqueue
// never blocks and never drops.
type MemoryQueue struct {
	mu       sync.Mutex
	messages []ports.Envelope
}

// NewMemoryQueue returns an empty queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Enqueue appends an envelope.
func (q *MemoryQueue) Enqueue(env ports.Envelope) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, env)
}

// Drain removes and returns everything enqueued so far, in order.
func (q *MemoryQueue) Drain() []ports.Envelope {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.messages
	q.messages = nil
	return out
}

// Len returns the number of buffered envelopes.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

var _ ports.Queue = (*MemoryQueue)(nil)
