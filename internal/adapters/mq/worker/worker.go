// Package worker defines worker contracts for asynchronous contest assembly.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/matchreel/matchreel/internal/adapters/mq/queue"
	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/validate"
	"github.com/matchreel/matchreel/pkg/logger"
	"github.com/matchreel/matchreel/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Assembler runs the full pipeline for one contest bundle.
type Assembler interface {
	Assemble(ctx context.Context, bundle model.ContestBundle) (AssemblyResult, error)
}

// AssemblyResult is what an Assembler hands back for publication.
type AssemblyResult interface {
	ContestID() string
	Report() validate.Report
}

// Sink receives finished runs. Failed runs are recorded, never published.
type Sink interface {
	Publish(ctx context.Context, result AssemblyResult) error
	RecordFailure(ctx context.Context, contestID string, report validate.Report)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes assembly jobs and publishes results via the sink.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing assembly jobs.
type InMemoryWorker struct {
	queue     Queue
	assembler Assembler
	sink      Sink
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, assembler Assembler, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		assembler: assembler,
		sink:      sink,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				return
			}

			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob assembles one contest and routes the result by verdict. A FAIL
// verdict retains the report for inspection and publishes nothing.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	result, err := w.assembler.Assemble(ctx, job.Bundle)
	if err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "assembly failed",
			logger.String("contest_id", job.Bundle.ContestID),
			logger.String("submission_id", job.SubmissionID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to assemble contest %s: %w", job.Bundle.ContestID, err)
	}

	report := result.Report()
	metrics.RecordValidationVerdict(report.Verdict.String())

	if report.Failed() {
		w.sink.RecordFailure(ctx, result.ContestID(), report)
		w.logger.Warn(ctx, "validation failed, run withheld",
			logger.String("contest_id", result.ContestID()),
		)
		return nil
	}

	if err := w.sink.Publish(ctx, result); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "publish failed",
			logger.String("contest_id", result.ContestID()),
			logger.Error(err),
		)
		return fmt.Errorf("publish failed: %w", err)
	}

	metrics.RecordContestAssembled()
	metrics.RecordAssemblyLatency(float64(time.Since(start).Milliseconds()))

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	assembler Assembler
	sink      Sink

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, assembler Assembler, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     queue,
		assembler: assembler,
		sink:      sink,
		logger:    logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			assembler,
			sink,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers. Each worker is signaled directly so
// none of them sits waiting on a queue that is still open.
func (p *Pool) Stop() {
	for i, worker := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		if err := worker.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker stop timed out", logger.Int("worker_id", i))
		}
		cancel()
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so workers drain remaining jobs.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)

	return nil
}
