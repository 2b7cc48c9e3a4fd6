package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestQueue_ProcessesJobs(t *testing.T) {
	q := NewQueue(4, 1, zap.NewNop())
	processed := make(chan string, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, func(ctx context.Context, job *CooldownJob) error {
		processed <- job.TransactionID
		return nil
	})

	if !q.Enqueue("tx-1") {
		t.Fatal("enqueue failed")
	}

	select {
	case id := <-processed:
		if id != "tx-1" {
			t.Errorf("processed %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job never processed")
	}
}

func TestQueue_RetriesThenDeadLetters(t *testing.T) {
	q := NewQueue(4, 1, zap.NewNop())
	q.backoff = time.Millisecond

	var attempts atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, func(ctx context.Context, job *CooldownJob) error {
		attempts.Add(1)
		return errors.New("always failing")
	})

	if !q.Enqueue("tx-1") {
		t.Fatal("enqueue failed")
	}

	deadline := time.After(2 * time.Second)
	for attempts.Load() < maxAttempts {
		select {
		case <-deadline:
			t.Fatalf("expected %d attempts, saw %d", maxAttempts, attempts.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// After exhaustion the job is dead-lettered, never re-enqueued.
	time.Sleep(50 * time.Millisecond)
	if got := attempts.Load(); got != maxAttempts {
		t.Fatalf("expected exactly %d attempts, saw %d", maxAttempts, got)
	}
}

func TestQueue_EnqueueOnFullQueue(t *testing.T) {
	// No workers started, so the single slot stays occupied.
	q := NewQueue(1, 1, zap.NewNop())

	if !q.Enqueue("tx-1") {
		t.Fatal("first enqueue should succeed")
	}
	if q.Enqueue("tx-2") {
		t.Fatal("second enqueue should report overflow")
	}
}

func TestQueue_EnqueueAfterStop(t *testing.T) {
	q := NewQueue(4, 1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, func(ctx context.Context, job *CooldownJob) error { return nil })

	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if q.Enqueue("tx-1") {
		t.Fatal("enqueue after stop should fail")
	}
}
