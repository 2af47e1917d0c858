// Package repository defines the published run store interface and errors.
package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/matchreel/matchreel/internal/domain/moment"
	"github.com/matchreel/matchreel/internal/domain/timeline"
	"github.com/matchreel/matchreel/internal/domain/validate"
	"github.com/matchreel/matchreel/pkg/metrics"
)

// Run is one published assembly output for a contest.
type Run struct {
	ContestID   string           `json:"contest_id"`
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Timeline    []timeline.Event `json:"timeline"`
	Moments     []moment.Moment  `json:"moments"`
	Report      validate.Report  `json:"report"`
}

// Store provides read/write access to published runs. Publication replaces
// any earlier run for the same contest; failed runs are retained separately
// and never surface through Latest.
type Store interface {
	// Publish stores a run as the latest for its contest.
	Publish(ctx context.Context, run Run) error

	// Latest returns the most recently published run for a contest.
	// Returns ErrNotFound if no run has been published.
	Latest(ctx context.Context, contestID string) (Run, error)

	// RecordFailure retains the validation report of a withheld run.
	RecordFailure(ctx context.Context, contestID string, report validate.Report)

	// LastReport returns the most recent validation report for a contest,
	// published or withheld. Returns ErrNotFound if none exists.
	LastReport(ctx context.Context, contestID string) (validate.Report, error)

	// Count returns the number of contests with a published run.
	Count(ctx context.Context) int
}

// shard holds one partition of the run store.
type shard struct {
	mu       sync.RWMutex
	runs     map[string]Run
	failures map[string]validate.Report
}

// ShardStore is an in-memory Store partitioned by contest ID hash to reduce
// lock contention across workers.
type ShardStore struct {
	shards []*shard
}

// NewShardStore creates a sharded in-memory run store.
func NewShardStore(opts ...Option) *ShardStore {
	s := &ShardStore{}
	cfg := storeConfig{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(&cfg)
	}

	s.shards = make([]*shard, cfg.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{
			runs:     make(map[string]Run),
			failures: make(map[string]validate.Report),
		}
	}
	return s
}

func (s *ShardStore) shardFor(contestID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(contestID))
	return s.shards[int(h.Sum32())%len(s.shards)]
}

// Publish stores a run as the latest for its contest. A published run clears
// any retained failure for that contest.
func (s *ShardStore) Publish(ctx context.Context, run Run) error {
	if run.ContestID == "" {
		return ErrInvalidRun
	}

	sh := s.shardFor(run.ContestID)
	sh.mu.Lock()
	sh.runs[run.ContestID] = run
	delete(sh.failures, run.ContestID)
	sh.mu.Unlock()

	s.publishGauges(ctx)
	return nil
}

// Latest returns the most recently published run for a contest.
func (s *ShardStore) Latest(ctx context.Context, contestID string) (Run, error) {
	sh := s.shardFor(contestID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	run, ok := sh.runs[contestID]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// RecordFailure retains the validation report of a withheld run.
func (s *ShardStore) RecordFailure(ctx context.Context, contestID string, report validate.Report) {
	sh := s.shardFor(contestID)
	sh.mu.Lock()
	sh.failures[contestID] = report
	sh.mu.Unlock()

	s.publishGauges(ctx)
}

// LastReport returns the most recent validation report for a contest. A
// retained failure takes precedence over an older published run's report.
func (s *ShardStore) LastReport(ctx context.Context, contestID string) (validate.Report, error) {
	sh := s.shardFor(contestID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if report, ok := sh.failures[contestID]; ok {
		return report, nil
	}
	if run, ok := sh.runs[contestID]; ok {
		return run.Report, nil
	}
	return validate.Report{}, ErrNotFound
}

// Count returns the number of contests with a published run.
func (s *ShardStore) Count(ctx context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.runs)
		sh.mu.RUnlock()
	}
	return total
}

func (s *ShardStore) publishGauges(ctx context.Context) {
	runs, failures := 0, 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		runs += len(sh.runs)
		failures += len(sh.failures)
		sh.mu.RUnlock()
	}
	metrics.UpdateRunsStored(runs)
	metrics.UpdateFailuresRetained(failures)
}
