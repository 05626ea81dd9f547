// Package scheduler runs background work under unique names, periodically or
// once, with retry and stop semantics modelled on a mobile job scheduler.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/NasaVasa/reservewatch/internal/infra/metrics"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	DefaultMinInterval = 15 * time.Minute
	onceMaxElapsed     = time.Hour
)

// Result is what a unit of work reports back.
type Result int

const (
	// Success finishes the run; periodic work waits for its next window.
	Success Result = iota
	// Retry re-runs the work with exponential backoff.
	Retry
	// Stop finishes the run and cancels any future periodic runs.
	Stop
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Retry:
		return "retry"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

type Work func(ctx context.Context) Result

// Policy decides what happens when work with the same name already exists.
type Policy int

const (
	Keep Policy = iota
	Replace
)

type WorkInfo struct {
	Name       string
	Periodic   bool
	Interval   time.Duration
	Flex       time.Duration
	NextRun    time.Time
	LastRun    time.Time
	LastResult Result
	Running    bool
}

type Scheduler struct {
	logger      *zap.Logger
	minInterval time.Duration
	newBackOff  func(maxElapsed time.Duration) backoff.BackOff

	baseCtx context.Context
	stop    context.CancelFunc

	randMu sync.Mutex
	rand   *rand.Rand

	// opMu serialises enqueue and cancel so one name never has two runners.
	opMu    sync.Mutex
	mu      sync.Mutex
	runners map[string]*runner
}

type runner struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	info WorkInfo
}

type Option func(*Scheduler)

// WithMinInterval lowers the interval floor, for tests.
func WithMinInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.minInterval = d }
}

func WithBackOff(factory func(maxElapsed time.Duration) backoff.BackOff) Option {
	return func(s *Scheduler) { s.newBackOff = factory }
}

func New(ctx context.Context, logger *zap.Logger, opts ...Option) *Scheduler {
	baseCtx, stop := context.WithCancel(ctx)
	s := &Scheduler{
		logger:      logger,
		minInterval: DefaultMinInterval,
		newBackOff:  defaultBackOff,
		baseCtx:     baseCtx,
		stop:        stop,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		runners:     make(map[string]*runner),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultBackOff(maxElapsed time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 30 * time.Second
	b.MaxInterval = 5 * time.Minute
	b.MaxElapsedTime = maxElapsed
	b.Reset()
	return b
}

// EnqueuePeriodic schedules work to run now and then once per interval, at a
// random point inside the last flex of each interval window. It reports
// whether the work was (re)scheduled.
func (s *Scheduler) EnqueuePeriodic(name string, interval, flex time.Duration, policy Policy, work Work) bool {
	if interval < s.minInterval {
		interval = s.minInterval
	}
	if flex < 0 || flex > interval {
		flex = interval
	}
	info := WorkInfo{Name: name, Periodic: true, Interval: interval, Flex: flex, NextRun: time.Now()}
	return s.start(name, policy, info, func(ctx context.Context, r *runner) {
		s.runPeriodic(ctx, r, interval, flex, work)
	})
}

// EnqueueOnce runs work immediately under its own unique name.
func (s *Scheduler) EnqueueOnce(name string, policy Policy, work Work) bool {
	info := WorkInfo{Name: name, NextRun: time.Now()}
	return s.start(name, policy, info, func(ctx context.Context, r *runner) {
		s.execute(ctx, r, work, onceMaxElapsed)
	})
}

func (s *Scheduler) Cancel(name string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	r, ok := s.runners[name]
	if ok {
		delete(s.runners, name)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	r.cancel()
	<-r.done
	s.logger.Info("work cancelled", zap.String("work", name))
}

func (s *Scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.runners[name]
	return ok
}

func (s *Scheduler) Info(name string) (WorkInfo, bool) {
	s.mu.Lock()
	r, ok := s.runners[name]
	s.mu.Unlock()
	if !ok {
		return WorkInfo{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info, true
}

// Shutdown cancels all work and waits for running work to return.
func (s *Scheduler) Shutdown() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.stop()
	s.mu.Lock()
	runners := make([]*runner, 0, len(s.runners))
	for name, r := range s.runners {
		runners = append(runners, r)
		delete(s.runners, name)
	}
	s.mu.Unlock()
	for _, r := range runners {
		<-r.done
	}
}

func (s *Scheduler) start(name string, policy Policy, info WorkInfo, body func(ctx context.Context, r *runner)) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	existing, ok := s.runners[name]
	s.mu.Unlock()
	if ok && policy == Keep {
		s.logger.Debug("work already scheduled, keeping", zap.String("work", name))
		return false
	}
	if ok {
		existing.cancel()
		<-existing.done
		s.logger.Info("work replaced", zap.String("work", name))
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	r := &runner{cancel: cancel, done: make(chan struct{}), info: info}
	s.mu.Lock()
	s.runners[name] = r
	s.mu.Unlock()

	go func() {
		defer close(r.done)
		defer s.release(name, r)
		body(ctx, r)
	}()
	return true
}

func (s *Scheduler) release(name string, r *runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runners[name] == r {
		delete(s.runners, name)
	}
}

func (s *Scheduler) runPeriodic(ctx context.Context, r *runner, interval, flex time.Duration, work Work) {
	windowStart := time.Now()
	for {
		if s.execute(ctx, r, work, interval) == Stop {
			s.logger.Info("periodic work stopped by its result", zap.String("work", r.info.Name))
			return
		}

		windowStart = windowStart.Add(interval)
		if now := time.Now(); windowStart.Before(now) {
			windowStart = now
		}
		next := windowStart.Add(interval - flex + s.jitter(flex))
		r.setNextRun(next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// execute runs work once, retrying with backoff while it asks for Retry.
func (s *Scheduler) execute(ctx context.Context, r *runner, work Work, maxElapsed time.Duration) Result {
	name := r.info.Name
	b := backoff.WithContext(s.newBackOff(maxElapsed), ctx)
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return Success
		}
		r.markRunning()
		result := s.safeRun(ctx, name, work)
		r.markDone(result)
		metrics.WorkRunsTotal.WithLabelValues(name, result.String()).Inc()

		if result != Retry {
			return result
		}
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			s.logger.Warn("work retries exhausted", zap.String("work", name), zap.Int("attempts", attempt))
			return Retry
		}
		s.logger.Info("work will retry", zap.String("work", name), zap.Int("attempt", attempt), zap.Duration("backoff", wait))
		r.setNextRun(time.Now().Add(wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Retry
		case <-timer.C:
		}
	}
}

func (s *Scheduler) safeRun(ctx context.Context, name string, work Work) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("work panicked", zap.String("work", name), zap.Any("panic", p))
			result = Retry
		}
	}()
	return work(ctx)
}

func (s *Scheduler) jitter(flex time.Duration) time.Duration {
	if flex <= 0 {
		return 0
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return time.Duration(s.rand.Int63n(int64(flex)))
}

func (r *runner) markRunning() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.Running = true
	r.info.LastRun = time.Now()
}

func (r *runner) markDone(result Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.Running = false
	r.info.LastResult = result
}

func (r *runner) setNextRun(next time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.NextRun = next
}
