package stream

import (
	"context"
	"io"
	"sync"

	"github.com/agentdesk/agentdesk/domain"
)

// EventQueue bridges the push-style network reader to a pull-style consumer.
// The producer side calls Push for each decoded event, then exactly one of
// End or Fail. The consumer side calls Next until it returns io.EOF or an
// error. The queue is unbounded so the reader never blocks on a slow
// consumer; backpressure for a live socket would only grow the kernel buffer
// instead.
type EventQueue struct {
	mu     sync.Mutex
	items  []domain.AgentStreamEvent
	err    error
	ended  bool
	notify chan struct{}
}

// NewEventQueue creates an empty, open queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{notify: make(chan struct{}, 1)}
}

// Push enqueues one event. Events pushed after End or Fail are discarded.
func (q *EventQueue) Push(ev domain.AgentStreamEvent) {
	q.mu.Lock()
	if !q.ended {
		q.items = append(q.items, ev)
	}
	q.mu.Unlock()
	q.signal()
}

// End marks the stream complete. Queued events remain consumable; Next
// returns io.EOF once they are drained.
func (q *EventQueue) End() {
	q.mu.Lock()
	q.ended = true
	q.mu.Unlock()
	q.signal()
}

// Fail terminates the queue with an error. The error preempts any queued
// events: the very next Next call returns it.
func (q *EventQueue) Fail(err error) {
	q.mu.Lock()
	if q.err == nil {
		q.err = err
	}
	q.ended = true
	q.mu.Unlock()
	q.signal()
}

func (q *EventQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Next returns the next event in FIFO order. While the queue is empty and
// still open it blocks on the producer's signal or on ctx. It returns the
// Fail error as soon as one is set, and io.EOF exactly when the queue is
// both ended and drained.
func (q *EventQueue) Next(ctx context.Context) (domain.AgentStreamEvent, error) {
	for {
		q.mu.Lock()
		if q.err != nil {
			err := q.err
			q.mu.Unlock()
			return domain.AgentStreamEvent{}, err
		}
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, nil
		}
		if q.ended {
			q.mu.Unlock()
			return domain.AgentStreamEvent{}, io.EOF
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return domain.AgentStreamEvent{}, ctx.Err()
		case <-q.notify:
		}
	}
}
