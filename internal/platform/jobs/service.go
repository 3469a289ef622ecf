package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run is one unit of background work.
type Run func(context.Context) error

type job struct {
	Name string
	Run  Run
}

// Service runs queued jobs one at a time on a single worker.
type Service struct {
	logger *zap.Logger
	queue  chan job
}

func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, queue: make(chan job, 16)}
}

// Start launches the worker; it stops when ctx is done.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue drops the job when the queue is full.
func (s *Service) Enqueue(name string, run Run) bool {
	select {
	case s.queue <- job{Name: name, Run: run}:
		return true
	default:
		s.logger.Warn("job queue full", zap.String("job", name))
		return false
	}
}

// Every enqueues run on each tick of interval until ctx is done.
func (s *Service) Every(ctx context.Context, name string, interval time.Duration, run Run) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Enqueue(name, run)
			}
		}
	}()
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.runJob(ctx, j)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) {
	started := time.Now()
	err := j.Run(ctx)
	fields := []zap.Field{zap.String("job", j.Name), zap.Duration("duration", time.Since(started))}
	if err != nil {
		s.logger.Warn("job run failed", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Debug("job completed", fields...)
}
