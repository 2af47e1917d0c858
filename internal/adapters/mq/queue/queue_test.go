package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/matchreel/matchreel/internal/domain/model"
)

func job(id string) Job {
	return Job{
		SubmissionID: id,
		Bundle:       model.ContestBundle{ContestID: "contest-" + id, StartTime: time.Now()},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job("a")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	jobChan := q.Dequeue(ctx)
	got := <-jobChan
	if got.SubmissionID != "a" {
		t.Errorf("expected submission a, got %v", got.SubmissionID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("a")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, job("b")) {
		t.Error("expected enqueue to succeed")
	}

	// Queue is at capacity; the next enqueue must be refused.
	if q.Enqueue(ctx, job("c")) {
		t.Error("expected enqueue to fail when full")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("a")) {
		t.Error("expected enqueue to succeed")
	}

	if err := q.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, job("b")) {
		t.Error("expected enqueue to fail after close")
	}

	// Remaining jobs drain, then the channel closes.
	jobChan := q.Dequeue(ctx)
	got, ok := <-jobChan
	if !ok || got.SubmissionID != "a" {
		t.Errorf("expected queued job a, got %v ok=%v", got.SubmissionID, ok)
	}
	if _, ok := <-jobChan; ok {
		t.Error("expected channel to be closed after drain")
	}

	// Closing twice is a no-op.
	if err := q.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestInMemoryQueue_Ordering(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(16))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if !q.Enqueue(ctx, job(fmt.Sprintf("%02d", i))) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	_ = q.Close()

	i := 0
	for got := range q.Dequeue(ctx) {
		want := fmt.Sprintf("%02d", i)
		if got.SubmissionID != want {
			t.Errorf("expected %s at position %d, got %s", want, i, got.SubmissionID)
		}
		i++
	}
	if i != 10 {
		t.Errorf("expected 10 jobs, got %d", i)
	}
}
