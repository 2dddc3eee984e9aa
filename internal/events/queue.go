package events

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO of stream events shared between the worker
// and the HTTP stream handler. Put never blocks: the worker must be able
// to report progress even when no client is connected, and a slow client
// must never stall an API call in flight.
type Queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []Event
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put appends an event to the tail of the queue.
func (q *Queue) Put(e Event) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.cond.Signal()
	q.mu.Unlock()
}

// Get removes and returns the oldest event, blocking until one is
// available or ctx ends. When multiple consumers read concurrently each
// event is delivered to exactly one of them.
func (q *Queue) Get(ctx context.Context) (Event, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q.cond.Wait()
	}
	e := q.items[0]
	q.items = q.items[1:]
	return e, nil
}

// Drain discards everything queued and reports how many events were
// dropped. A new run drains leftovers from the previous one so a client
// connecting mid-stream does not replay stale output.
func (q *Queue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	return n
}

// Len reports how many events are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
