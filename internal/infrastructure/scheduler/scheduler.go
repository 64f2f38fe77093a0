package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avocado/teamhub/internal/infrastructure/config"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc is the body of a periodic job
type JobFunc func(ctx context.Context) error

// JobRecord is the status of the latest run of a named job
type JobRecord struct {
	Name        string
	Status      JobStatus
	Error       string
	Runs        int64
	RetryCount  int
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Start marks the job as running
func (j *JobRecord) Start(now time.Time) {
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.CompletedAt = nil
	j.Error = ""
	j.Runs++
}

// Complete marks the job as successful
func (j *JobRecord) Complete(now time.Time) {
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
	j.RetryCount = 0
}

// Fail marks the job as failed
func (j *JobRecord) Fail(now time.Time, err error) {
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err.Error()
}

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc

	mu      sync.Mutex
	record  JobRecord
	running bool
}

func (j *job) snapshot() JobRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.record
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		JobTimeout:    30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    2 * time.Second,
	}
}

// FromConfig builds the scheduler configuration from application config
func FromConfig(cfg config.SchedulerConfig) SchedulerConfig {
	sc := DefaultSchedulerConfig()
	if cfg.JobTimeout > 0 {
		sc.JobTimeout = cfg.JobTimeout
	}
	if cfg.RetryAttempts > 0 {
		sc.RetryAttempts = cfg.RetryAttempts
	}
	return sc
}

// Scheduler runs named periodic jobs. Each job has its own trigger loop and
// never overlaps with itself.
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	jobs      map[string]*job
	order     []string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultSchedulerConfig().JobTimeout
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	return &Scheduler{
		config: cfg,
		logger: logger,
		now:    time.Now,
		jobs:   make(map[string]*job),
	}
}

// Register adds a named job. Jobs must be registered before Start.
func (s *Scheduler) Register(name string, interval time.Duration, fn JobFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: job name and function are required", ErrInvalidConfig)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: interval for job %q must be positive", ErrInvalidConfig, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyRegistered, name)
	}

	s.jobs[name] = &job{
		name:     name,
		interval: interval,
		fn:       fn,
		record:   JobRecord{Name: name, Status: JobStatusPending},
	}
	s.order = append(s.order, name)
	return nil
}

// Start starts one trigger loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, name := range s.order {
		j := s.jobs[name]
		s.wg.Add(1)
		go s.runLoop(ctx, j)
	}

	s.logger.Info("Scheduler started",
		zap.Strings("jobs", s.order),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler has been started
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Trigger runs a job immediately and waits for it to finish
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	j, err := s.lookup(name)
	if err != nil {
		return err
	}
	return s.execute(ctx, j)
}

// Status returns the record of a named job
func (s *Scheduler) Status(name string) (JobRecord, error) {
	j, err := s.lookup(name)
	if err != nil {
		return JobRecord{}, err
	}
	return j.snapshot(), nil
}

// Statuses returns the records of all jobs in registration order
func (s *Scheduler) Statuses() []JobRecord {
	s.mu.Lock()
	jobs := make([]*job, 0, len(s.order))
	for _, name := range s.order {
		jobs = append(jobs, s.jobs[name])
	}
	s.mu.Unlock()

	records := make([]JobRecord, len(jobs))
	for i, j := range jobs {
		records[i] = j.snapshot()
	}
	return records
}

func (s *Scheduler) lookup(name string) (*job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return j, nil
}

// execute runs a job with the configured timeout, retrying failed attempts
// up to RetryAttempts times.
func (s *Scheduler) execute(ctx context.Context, j *job) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrJobAlreadyRunning, j.name)
	}
	j.running = true
	j.record.Start(s.now())
	j.record.RetryCount = 0
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	var err error
	for attempt := 0; ; attempt++ {
		err = s.attempt(ctx, j)
		if err == nil {
			break
		}
		if attempt >= s.config.RetryAttempts || ctx.Err() != nil {
			break
		}

		j.mu.Lock()
		j.record.RetryCount = attempt + 1
		j.mu.Unlock()

		s.logger.Warn("Job attempt failed, retrying",
			zap.String("job", j.name),
			zap.Int("retry_count", attempt+1),
			zap.Int("max_retries", s.config.RetryAttempts),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
		case <-time.After(s.config.RetryDelay):
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err != nil {
		j.record.Fail(s.now(), err)
		s.logger.Error("Job failed",
			zap.String("job", j.name),
			zap.Int("retry_count", j.record.RetryCount),
			zap.Error(err),
		)
		return err
	}
	j.record.Complete(s.now())
	s.logger.Debug("Job completed", zap.String("job", j.name))
	return nil
}

func (s *Scheduler) attempt(ctx context.Context, j *job) (err error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	return j.fn(jobCtx)
}
