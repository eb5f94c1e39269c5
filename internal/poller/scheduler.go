package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"nyctransit.dev/board/internal/logging"
)

const DefaultInterval = 5 * time.Minute

// State of a Scheduler.
type State int32

const (
	Idle State = iota
	Polling
)

func (s State) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

// Cycler runs one fetch cycle.
type Cycler interface {
	Dispatch(ctx context.Context) uint64
}

// Scheduler fires one cycle on start and then one per interval. Ticks never
// wait for earlier cycles, so cycles may overlap.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	logger   *slog.Logger

	state        atomic.Int32
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once

	// mu orders Start and trigger against Shutdown so that no wg.Add happens
	// once Shutdown is waiting.
	mu      sync.Mutex
	started bool
	stopped bool
}

func NewScheduler(cycler Cycler, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cycler:       cycler,
		interval:     interval,
		logger:       logger.With(slog.String("component", "refresh_scheduler")),
		ctx:          ctx,
		cancel:       cancel,
		shutdownChan: make(chan struct{}),
	}
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start moves the scheduler from Idle to Polling. Later calls, and calls after
// Shutdown, do nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.state.Store(int32(Polling))
	logging.LogOperation(s.logger, "scheduler_started", slog.Duration("interval", s.interval))

	s.spawnCycle()
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.trigger()
		case <-s.shutdownChan:
			logging.LogOperation(s.logger, "shutting_down_scheduler")
			return
		}
	}
}

func (s *Scheduler) trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.spawnCycle()
}

// spawnCycle must be called with mu held.
func (s *Scheduler) spawnCycle() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer logging.RecoverWithLogging(s.logger, "dispatch_cycle")
		s.cycler.Dispatch(s.ctx)
	}()
}

// Shutdown stops the ticker, cancels in-flight cycles and waits for them.
func (s *Scheduler) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		close(s.shutdownChan)
		s.cancel()
		s.mu.Unlock()

		s.wg.Wait()
		s.state.Store(int32(Idle))
	})
}
