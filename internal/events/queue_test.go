package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOrdering(t *testing.T) {
	q := NewQueue()
	q.Put(Message{Text: "first"})
	q.Put(Message{Text: "second"})
	q.Put(Message{Text: "third"})

	ctx := context.Background()
	for _, want := range []string{"first", "second", "third"} {
		ev, err := q.Get(ctx)
		require.NoError(t, err)
		msg, ok := ev.(Message)
		require.True(t, ok)
		assert.Equal(t, want, msg.Text)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueuePutNeverBlocks(t *testing.T) {
	q := NewQueue()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			q.Put(Progress{CurrentQ: i, TotalQs: 10000})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked with no consumer attached")
	}
	assert.Equal(t, 10000, q.Len())
}

func TestQueueGetBlocksUntilPut(t *testing.T) {
	q := NewQueue()
	got := make(chan Event, 1)
	go func() {
		ev, err := q.Get(context.Background())
		if err == nil {
			got <- ev
		}
	}()

	// Give the consumer a moment to park before producing.
	time.Sleep(20 * time.Millisecond)
	q.Put(Message{Text: "wake up"})

	select {
	case ev := <-got:
		msg, ok := ev.(Message)
		require.True(t, ok)
		assert.Equal(t, "wake up", msg.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never woke up after Put")
	}
}

func TestQueueGetHonorsContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Get(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Get did not return after context cancellation")
	}
}

func TestQueueDrain(t *testing.T) {
	q := NewQueue()
	q.Put(Message{Text: "stale"})
	q.Put(Message{Text: "stale"})
	q.Put(End{})

	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Drain())
}

func TestQueueConcurrentConsumersSplitEvents(t *testing.T) {
	// Two consumers on one queue each receive a disjoint subset; together
	// they must see every event exactly once.
	q := NewQueue()
	const n = 200

	results := make(chan int, n)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for c := 0; c < 2; c++ {
		go func() {
			for {
				ev, err := q.Get(ctx)
				if err != nil {
					return
				}
				results <- ev.(Progress).CurrentQ
			}
		}()
	}

	for i := 0; i < n; i++ {
		q.Put(Progress{CurrentQ: i, TotalQs: n})
	}

	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		select {
		case v := <-results:
			assert.False(t, seen[v], "event %d delivered twice", v)
			seen[v] = true
		case <-ctx.Done():
			t.Fatalf("timed out after %d of %d events", i, n)
		}
	}
	assert.Len(t, seen, n)
}
