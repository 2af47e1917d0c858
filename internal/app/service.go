package service

import (
	"context"
	"sync"

	jobqueue "github.com/matchreel/matchreel/internal/adapters/mq/queue"
	workerpool "github.com/matchreel/matchreel/internal/adapters/mq/worker"
	"github.com/matchreel/matchreel/internal/adapters/repository"
	"github.com/matchreel/matchreel/internal/config"
	"github.com/matchreel/matchreel/internal/domain/dedupe"
	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/validate"
	"github.com/matchreel/matchreel/pkg/logger"
	"github.com/matchreel/matchreel/pkg/metrics"
)

// Service implements the API dependencies for the recap assembly system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	deduper   dedupe.Deduper
	jobQueue  jobqueue.Queue
	assembler *Assembler
	pool      *workerpool.Pool

	// Configuration
	cfg *config.Config

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the engine and process configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets a custom run store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:    config.New(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// assemblerAdapter bridges the pipeline Assembler to the worker contract.
type assemblerAdapter struct {
	assembler *Assembler
}

func (a *assemblerAdapter) Assemble(ctx context.Context, bundle model.ContestBundle) (workerpool.AssemblyResult, error) {
	return a.assembler.Assemble(ctx, bundle)
}

// storeSink publishes finished runs to the repository. FAIL verdicts never
// reach Publish; the worker routes them to RecordFailure.
type storeSink struct {
	store repository.Store
}

func (s *storeSink) Publish(ctx context.Context, result workerpool.AssemblyResult) error {
	r, ok := result.(*Result)
	if !ok {
		return ErrInvalidBundle
	}
	return s.store.Publish(ctx, repository.Run{
		ContestID:   r.ID,
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		Timeline:    r.Timeline,
		Moments:     r.Moments,
		Report:      r.Validation,
	})
}

func (s *storeSink) RecordFailure(ctx context.Context, contestID string, report validate.Report) {
	s.store.RecordFailure(ctx, contestID, report)
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recap assembly service...")

	if s.store == nil {
		s.store = repository.NewShardStore(
			repository.WithShardCount(s.cfg.ShardCount),
		)
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.cfg.DedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.cfg.QueueSize),
		jobqueue.WithBufferSize(s.cfg.QueueSize),
	)
	s.assembler = NewAssembler(
		s.cfg.TimingProfile(),
		s.cfg.TierThresholds,
		s.cfg.BoundaryPolicy(),
		s.cfg.Budget(),
		s.cfg.MarketPolicy(),
	)

	s.pool = workerpool.NewPool(
		s.cfg.WorkerCount,
		s.jobQueue,
		&assemblerAdapter{assembler: s.assembler},
		&storeSink{store: s.store},
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "recap assembly service started",
		logger.Int("workers", s.cfg.WorkerCount),
		logger.Int("queueSize", s.cfg.QueueSize),
		logger.Int("dedupeSize", s.cfg.DedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping recap assembly service...")

	if s.pool != nil {
		s.pool.Stop()
	}

	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "recap assembly service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records it
// if not. Returns true if the submission was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission ID from the seen set, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a contest bundle for asynchronous assembly. Returns false
// when the queue refuses the job (backpressure).
func (s *Service) Enqueue(ctx context.Context, submissionID string, bundle model.ContestBundle) bool {
	ok := s.jobQueue.Enqueue(ctx, jobqueue.Job{SubmissionID: submissionID, Bundle: bundle})
	if ok {
		metrics.RecordSubmissionAccepted()
	}
	return ok
}

// Recap returns the latest published run for a contest.
func (s *Service) Recap(ctx context.Context, contestID string) (repository.Run, error) {
	return s.store.Latest(ctx, contestID)
}

// LastReport returns the most recent validation report for a contest,
// published or withheld.
func (s *Service) LastReport(ctx context.Context, contestID string) (validate.Report, error) {
	return s.store.LastReport(ctx, contestID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.cfg.WorkerCount,
		"queueSize":   s.cfg.QueueSize,
		"dedupeSize":  s.cfg.DedupeSize,
	}

	if s.started {
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["publishedContests"] = s.store.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
