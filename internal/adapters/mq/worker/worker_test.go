package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/matchreel/matchreel/internal/adapters/mq/queue"
	worker "github.com/matchreel/matchreel/internal/adapters/mq/worker"
	model "github.com/matchreel/matchreel/internal/domain/model"
	validate "github.com/matchreel/matchreel/internal/domain/validate"
	logging "github.com/matchreel/matchreel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobChan chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		jobChan: make(chan queue.Job, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobChan
}

func (mq *mockQueue) Close() error {
	close(mq.jobChan)
	return nil
}

func (mq *mockQueue) addJob(j queue.Job) {
	mq.jobChan <- j
}

type mockResult struct {
	id     string
	report validate.Report
}

func (r *mockResult) ContestID() string       { return r.id }
func (r *mockResult) Report() validate.Report { return r.report }

type mockAssembler struct {
	mu      sync.Mutex
	results map[string]*mockResult
	errs    map[string]error
	calls   int
}

func newMockAssembler() *mockAssembler {
	return &mockAssembler{
		results: make(map[string]*mockResult),
		errs:    make(map[string]error),
	}
}

func (ma *mockAssembler) Assemble(ctx context.Context, bundle model.ContestBundle) (worker.AssemblyResult, error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.calls++
	if err, ok := ma.errs[bundle.ContestID]; ok {
		return nil, err
	}
	if res, ok := ma.results[bundle.ContestID]; ok {
		return res, nil
	}
	return &mockResult{id: bundle.ContestID}, nil
}

type mockSink struct {
	mu        sync.Mutex
	published []string
	failed    []string
	pubErr    error
}

func (ms *mockSink) Publish(ctx context.Context, result worker.AssemblyResult) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.pubErr != nil {
		return ms.pubErr
	}
	ms.published = append(ms.published, result.ContestID())
	return nil
}

func (ms *mockSink) RecordFailure(ctx context.Context, contestID string, report validate.Report) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.failed = append(ms.failed, contestID)
}

func (ms *mockSink) publishedIDs() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]string, len(ms.published))
	copy(out, ms.published)
	return out
}

func (ms *mockSink) failedIDs() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]string, len(ms.failed))
	copy(out, ms.failed)
	return out
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorker(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a worker wired to a queue, assembler, and sink", t, func() {
		mq := newMockQueue()
		ma := newMockAssembler()
		sink := &mockSink{}
		w := worker.NewInMemoryWorker(mq, ma, sink, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a passing contest is assembled", func() {
			mq.addJob(queue.Job{SubmissionID: "s1", Bundle: model.ContestBundle{ContestID: "c1"}})

			convey.Convey("Then the run is published", func() {
				ok := waitFor(func() bool { return len(sink.publishedIDs()) == 1 })
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(sink.publishedIDs()[0], convey.ShouldEqual, "c1")
				convey.So(sink.failedIDs(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When validation fails for a contest", func() {
			ma.results["c2"] = &mockResult{
				id: "c2",
				report: validate.Report{
					Verdict: validate.VerdictFail,
					Checks:  []validate.Check{{Name: "coverage", Status: validate.StatusFail, Message: "gap"}},
				},
			}
			mq.addJob(queue.Job{SubmissionID: "s2", Bundle: model.ContestBundle{ContestID: "c2"}})

			convey.Convey("Then the run is withheld and the failure recorded", func() {
				ok := waitFor(func() bool { return len(sink.failedIDs()) == 1 })
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(sink.failedIDs()[0], convey.ShouldEqual, "c2")
				convey.So(sink.publishedIDs(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the assembler returns an error", func() {
			ma.errs["c3"] = errors.New("bad bundle")
			mq.addJob(queue.Job{SubmissionID: "s3", Bundle: model.ContestBundle{ContestID: "c3"}})

			convey.Convey("Then nothing is published or recorded", func() {
				waitFor(func() bool {
					ma.mu.Lock()
					defer ma.mu.Unlock()
					return ma.calls >= 1
				})
				convey.So(sink.publishedIDs(), convey.ShouldBeEmpty)
				convey.So(sink.failedIDs(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then shutdown completes before the deadline", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a pool of workers", t, func() {
		mq := newMockQueue()
		ma := newMockAssembler()
		sink := &mockSink{}
		pool := worker.NewPool(4, mq, ma, sink)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When several contests are queued", func() {
			for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
				mq.addJob(queue.Job{SubmissionID: "s-" + id, Bundle: model.ContestBundle{ContestID: id}})
			}

			convey.Convey("Then every passing contest is published once", func() {
				ok := waitFor(func() bool { return len(sink.publishedIDs()) == 5 })
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the pool stops while the queue is still open", func() {
			start := time.Now()
			pool.Stop()

			convey.Convey("Then every worker is released promptly", func() {
				convey.So(time.Since(start), convey.ShouldBeLessThan, time.Second)
			})
		})

		convey.Convey("When the pool shuts down", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}
