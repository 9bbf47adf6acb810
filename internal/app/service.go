// Package service runs simulated league seasons in parallel and keeps their
// standings for querying.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/rally/internal/adapters/mq/queue"
	workerpool "github.com/okian/rally/internal/adapters/mq/worker"
	"github.com/okian/rally/internal/adapters/repository"
	"github.com/okian/rally/internal/audit"
	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/domain/dedupe"
	"github.com/okian/rally/internal/season"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// auditSeedMix keeps audit trials off the season's own random stream.
const auditSeedMix = 0xa0761d6478bd642f

// Status is the lifecycle state of a submitted season.
type Status string

// Season states.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Service wires the job queue, the worker pool and the standings store.
type Service struct {
	mu sync.RWMutex

	// Core components
	standings  repository.Store
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	runner     *season.Runner
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	retention   int
	seasonCfg   season.Config

	// State
	started bool
	status  map[string]Status
	errs    map[string]error
	pending int
	idle    chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of seasons simulated in parallel.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending seasons.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many season IDs are remembered for duplicate detection.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRetention caps the number of seasons whose standings are kept.
func WithRetention(n int) Option {
	return func(s *Service) {
		s.retention = n
	}
}

// WithSeasonConfig sets the configuration every season runs with.
func WithSeasonConfig(cfg season.Config) Option {
	return func(s *Service) {
		s.seasonCfg = cfg
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

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  10_000,
		seasonCfg:   season.DefaultConfig(),
		status:      make(map[string]Status),
		errs:        make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

	runner, err := season.NewRunner(s.seasonCfg, season.WithLogger(s.logger.Named("season")))
	if err != nil {
		return fmt.Errorf("start league service: %w", err)
	}
	s.runner = runner

	s.standings = repository.NewTreapStore(repository.WithRetention(s.retention))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobQueue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.runner, s,
		workerpool.WithLogger(s.logger.Named("worker")))
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "league service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the queue and waits for in-flight seasons. Standings stay
// queryable afterwards.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool := s.workerPool
	s.mu.Unlock()

	// Workers report back through Record and Fail, which take the lock.
	ctx := context.Background()
	s.logger.Info(ctx, "stopping league service...")
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.logger.Info(ctx, "league service stopped")
}

// Submit enqueues one season. An empty id gets a fresh UUID. Submitting an
// id that is still remembered fails with ErrDuplicateSeason.
func (s *Service) Submit(ctx context.Context, id string, seed uint64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return "", ErrNotStarted
	}
	if id == "" {
		id = uuid.NewString()
	}
	if s.deduper.SeenAndRecord(ctx, id) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateSeason, id)
	}

	job := jobqueue.Job{ID: id, Seed: seed, SubmittedAt: time.Now()}
	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, id)
		return "", fmt.Errorf("submit season %s: %w", id, err)
	}

	s.status[id] = StatusPending
	delete(s.errs, id)
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++

	s.logger.Debug(ctx, "season submitted", logger.String("season", id), logger.Uint64("seed", seed))
	return id, nil
}

// Record implements worker.Recorder.
func (s *Service) Record(ctx context.Context, job jobqueue.Job, rep *season.Report) error {
	if err := s.standings.Save(ctx, rep); err != nil {
		return err
	}
	s.finish(job.ID, StatusCompleted, nil)
	return nil
}

// Fail implements worker.Recorder.
func (s *Service) Fail(ctx context.Context, job jobqueue.Job, err error) {
	s.logger.Error(ctx, "season failed", logger.String("season", job.ID), logger.Error(err))
	s.finish(job.ID, StatusFailed, err)
}

func (s *Service) finish(id string, st Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status[id] = st
	if err != nil {
		s.errs[id] = err
	}
	s.pending--
	if s.pending == 0 && s.idle != nil {
		close(s.idle)
		s.idle = nil
	}
}

// Wait blocks until every submitted season has finished or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	s.mu.RLock()
	idle := s.idle
	s.mu.RUnlock()

	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for seasons: %w", ctx.Err())
	}
}

// Status returns a season's state and whether the season is known.
func (s *Service) Status(id string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.status[id]
	return st, ok
}

// Failure returns the error a failed season ended with.
func (s *Service) Failure(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[id]
}

// Seasons lists the seasons whose standings are kept, oldest first.
func (s *Service) Seasons(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.standings.Seasons(ctx), nil
}

// Report returns a completed season's report.
func (s *Service) Report(ctx context.Context, seasonID string) (*season.Report, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.standings.Report(ctx, seasonID)
}

// TopN returns the first n rows of a season's standings.
func (s *Service) TopN(ctx context.Context, seasonID string, n int) ([]repository.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.standings.TopN(ctx, seasonID, n)
}

// Rank returns one contestant's row in a season's standings.
func (s *Service) Rank(ctx context.Context, seasonID string, id contestant.ID) (repository.Entry, error) {
	if err := s.ready(); err != nil {
		return repository.Entry{}, err
	}
	return s.standings.Rank(ctx, seasonID, id)
}

// Audit compares ratings with simulated results for a completed season.
// Trial matches run on copies; the stored season is not changed.
func (s *Service) Audit(ctx context.Context, seasonID string, trials int) (audit.Summary, error) {
	rep, err := s.Report(ctx, seasonID)
	if err != nil {
		return audit.Summary{}, err
	}
	if rep.Pool() == nil {
		return audit.Summary{}, fmt.Errorf("%w: %s", ErrAuditUnavailable, seasonID)
	}

	cmp := audit.NewComparator(season.NewSource(rep.Seed^auditSeedMix),
		audit.WithMinMatches(s.seasonCfg.NewThreshold+1))
	sum, err := cmp.Audit(rep.Pool().Members(), trials)
	if err != nil {
		return audit.Summary{}, fmt.Errorf("audit season %s: %w", seasonID, err)
	}
	s.logger.Debug(ctx, "season audited",
		logger.String("season", seasonID),
		logger.Int("pairs", len(sum.Pairs)),
		logger.Float64("meanAbsError", sum.MeanAbsError),
	)
	return sum, nil
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.standings == nil {
		return ErrNotStarted
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"pending":     s.pending,
	}

	var completed, failed int
	for _, st := range s.status {
		switch st {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}
	stats["completed"] = completed
	stats["failed"] = failed

	if s.started {
		ctx := context.Background()
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["seasonsKept"] = len(s.standings.Seasons(ctx))
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}

// Size returns the number of remembered season IDs.
func (s *Service) Size() int {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
