package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerRunsQueuedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(nil)
	s.Start(ctx)

	done := make(chan struct{})
	if !s.Enqueue("once", func(context.Context) error { close(done); return nil }) {
		t.Fatalf("expected job to be queued")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not run")
	}
}

func TestEveryKeepsRunningAfterFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(nil)
	s.Start(ctx)

	var runs int32
	s.Every(ctx, "resync", 5*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("remote unavailable")
	})
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected repeated runs, got %d", atomic.LoadInt32(&runs))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	s := New(nil)
	for i := 0; i < cap(s.queue); i++ {
		s.Enqueue("fill", func(context.Context) error { return nil })
	}
	if s.Enqueue("overflow", func(context.Context) error { return nil }) {
		t.Fatalf("expected full queue to drop the job")
	}
}
