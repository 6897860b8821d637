// Package automation runs recurring jobs, such as nightly backups and the
// weekly evaluation reminder, while the serve command is up.
package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ActionFunc executes one job run.
type ActionFunc func(ctx context.Context) error

type job struct {
	name     string
	schedule *Schedule
	action   ActionFunc
	next     time.Time
	running  bool
}

// Service polls its jobs and runs the ones that are due.
type Service struct {
	logger       *zap.Logger
	pollInterval time.Duration
	loc          *time.Location
	now          func() time.Time

	mu   sync.Mutex
	jobs []*job
	wg   sync.WaitGroup
}

// NewService creates a scheduler evaluating schedules in loc.
func NewService(logger *zap.Logger, pollInterval time.Duration, loc *time.Location) *Service {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, pollInterval: pollInterval, loc: loc, now: time.Now}
}

// Register adds a job. An empty expr leaves the job disabled.
func (s *Service) Register(name, expr string, fn ActionFunc) error {
	if expr == "" {
		s.logger.Debug("automation disabled", zap.String("job", name))
		return nil
	}
	sched, err := ParseSchedule(expr)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", name, err)
	}
	next, ok := sched.Next(s.now().In(s.loc))
	if !ok {
		return fmt.Errorf("failed to register %s: schedule %q never fires", name, expr)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, &job{name: name, schedule: sched, action: fn, next: next})
	s.mu.Unlock()
	s.logger.Info("automation registered", zap.String("job", name), zap.Time("next_run", next))
	return nil
}

// Run polls until ctx is done, then waits for running jobs to return.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	defer s.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// NextRuns reports the next fire time of each registered job.
func (s *Service) NextRuns() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.jobs))
	for _, j := range s.jobs {
		out[j.name] = j.next
	}
	return out
}

func (s *Service) runDue(ctx context.Context) {
	now := s.now().In(s.loc)

	s.mu.Lock()
	var due []*job
	for _, j := range s.jobs {
		if j.running || j.next.After(now) {
			continue
		}
		j.running = true
		due = append(due, j)
	}
	s.mu.Unlock()

	for _, j := range due {
		s.wg.Add(1)
		go s.execute(ctx, j, now)
	}
}

func (s *Service) execute(ctx context.Context, j *job, now time.Time) {
	defer s.wg.Done()

	start := time.Now()
	err := j.action(ctx)
	if err != nil {
		s.logger.Warn("automation failed", zap.String("job", j.name), zap.Error(err))
	} else {
		s.logger.Info("automation finished", zap.String("job", j.name), zap.Duration("took", time.Since(start)))
	}

	next, ok := j.schedule.Next(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	j.running = false
	if !ok {
		s.removeLocked(j)
		return
	}
	j.next = next
}

func (s *Service) removeLocked(target *job) {
	for i, j := range s.jobs {
		if j == target {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			return
		}
	}
}
