package cron

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const (
	defaultInterval   = 24 * time.Hour
	defaultJobTimeout = 30 * time.Minute
)

// ErrUnknownJob is returned by RunJob for names the registry does not hold.
var ErrUnknownJob = errors.New("unknown job")

type ServiceParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Locker     Locker
	Metrics    *metrics.JobMetrics
	Interval   time.Duration
	JobTimeout time.Duration
	Now        func() time.Time
}

// Service runs every registered job once per interval. Each job takes its
// own lock, so a slow job does not hold back the others.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	locker     Locker
	metrics    *metrics.JobMetrics
	interval   time.Duration
	jobTimeout time.Duration
	now        func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Locker == nil {
		return nil, errors.New("locker required")
	}
	if params.Registry == nil {
		return nil, errors.New("registry required")
	}
	s := &Service{
		logg:       params.Logger,
		registry:   params.Registry,
		locker:     params.Locker,
		metrics:    params.Metrics,
		interval:   params.Interval,
		jobTimeout: params.JobTimeout,
		now:        params.Now,
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.jobTimeout <= 0 {
		s.jobTimeout = defaultJobTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Run executes a cycle right away, then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "cron cycle finished with failures", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs every job a single time and returns the combined job failures.
// It backs the worker's -once mode for external schedulers.
func (s *Service) RunOnce(ctx context.Context) error {
	var errs error
	for _, job := range s.registry.Jobs() {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		errs = multierr.Append(errs, s.run(ctx, job))
	}
	return errs
}

// RunJob runs the named job if its lock is free.
func (s *Service) RunJob(ctx context.Context, name string) error {
	job, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, job)
}

func (s *Service) run(ctx context.Context, job Job) error {
	name := job.Name()
	ctx = s.logg.WithFields(ctx, map[string]any{"job": name, "event": "cron.job"})

	lock := s.locker.For(name)
	held, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}
	if !held {
		s.logg.Info(ctx, "job locked by another instance")
		s.metrics.ObserveRun(name, metrics.OutcomeSkipped, 0, s.now())
		return nil
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "job lock release failed", err)
		}
	}()

	start := s.now()
	err = s.invoke(ctx, job)
	finished := s.now()
	took := finished.Sub(start)

	ctx = s.logg.WithField(ctx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "job failed", err)
		s.metrics.ObserveRun(name, metrics.OutcomeFailure, took, finished)
		return fmt.Errorf("job %s: %w", name, err)
	}
	s.logg.Info(ctx, "job completed")
	s.metrics.ObserveRun(name, metrics.OutcomeSuccess, took, finished)
	return nil
}

// invoke bounds the job by the timeout and turns a panic into an error.
func (s *Service) invoke(ctx context.Context, job Job) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return job.Run(ctx)
}
