package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a background job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobKind selects the work a job performs
type JobKind string

const (
	// JobKindRecurringTick generates the due recurring invoices of one tenant
	JobKindRecurringTick JobKind = "RECURRING_TICK"
)

// Job is one unit of background work for a tenant
type Job struct {
	ID          uuid.UUID
	Kind        JobKind
	TenantID    uuid.UUID
	RunDate     time.Time // business day the job runs for
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

func NewJob(kind JobKind, tenantID uuid.UUID, runDate time.Time, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Kind:       kind,
		TenantID:   tenantID,
		RunDate:    runDate,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

func (j *Job) start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

func (j *Job) complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

func (j *Job) fail(err error) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err.Error()
}

// ShouldRetry reports whether a failed job has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// JobExecutor runs jobs
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// Scheduler is a bounded worker pool. Jobs run with a per-job timeout and
// failed jobs are retried after RetryDelay up to RetryAttempts times.
type Scheduler struct {
	config   config.SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *Job
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

func NewScheduler(cfg config.SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	return &Scheduler{
		config:   cfg,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, 100),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(s.ctx, i)
	}

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for workers and pending retries.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a job without blocking
func (s *Scheduler) Submit(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("tenant_id", job.TenantID.String()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.process(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, job *Job, workerID int) {
	job.start()
	jobCtx := logger.WithTenantID(ctx, job.TenantID)
	log := logger.Enrich(jobCtx, s.logger).With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
	)

	jobCtx, cancel := context.WithTimeout(jobCtx, s.config.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.fail(err)
		log.Error("Job failed", zap.Int("retry_count", job.RetryCount), zap.Error(err))

		if job.ShouldRetry() && ctx.Err() == nil {
			s.scheduleRetry(ctx, job)
		}
		return
	}

	job.complete()
	log.Info("Job completed", zap.Duration("took", job.CompletedAt.Sub(*job.StartedAt)))
}

func (s *Scheduler) scheduleRetry(ctx context.Context, job *Job) {
	job.RetryCount++
	job.Status = JobStatusPending

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.config.RetryDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.Submit(job); err != nil {
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	}()
}
