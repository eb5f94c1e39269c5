// Package poller drives the fetch cycles and publishes their results.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"nyctransit.dev/board/internal/logging"
	"nyctransit.dev/board/internal/models"
)

// ArrivalSource is one upstream feed with its normalization.
type ArrivalSource interface {
	Feed() models.Feed
	Fetch(ctx context.Context, now time.Time) (models.Arrivals, error)
}

// Dispatcher runs fetch cycles. Every cycle gets the next sequence number and
// runs its sources independently; a failing source leaves its previously
// published result in place.
type Dispatcher struct {
	sources  []ArrivalSource
	board    *Board
	clock    func() time.Time
	logger   *slog.Logger
	sequence atomic.Uint64
}

type DispatcherOption func(*Dispatcher)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

func NewDispatcher(board *Board, logger *slog.Logger, sources []ArrivalSource, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		sources: sources,
		board:   board,
		clock:   time.Now,
		logger:  logger.With(slog.String("component", "dispatcher")),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NextSequence reserves a cycle number.
func (d *Dispatcher) NextSequence() uint64 {
	return d.sequence.Add(1)
}

// Dispatch runs one full cycle and returns its sequence once every source
// has finished.
func (d *Dispatcher) Dispatch(ctx context.Context) uint64 {
	sequence := d.NextSequence()
	d.DispatchSequence(ctx, sequence)
	return sequence
}

// DispatchSequence runs a cycle under an already reserved sequence.
func (d *Dispatcher) DispatchSequence(ctx context.Context, sequence uint64) {
	ctx = logging.WithLogger(ctx, d.logger)
	now := d.clock()

	var wg sync.WaitGroup
	for _, source := range d.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer logging.RecoverWithLogging(d.logger, "fetch_"+string(source.Feed()))
			d.run(ctx, source, sequence, now)
		}()
	}
	wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, source ArrivalSource, sequence uint64, now time.Time) {
	started := time.Now()
	feed := source.Feed()

	arrivals, err := source.Fetch(ctx, now)
	if err != nil {
		logging.LogFetch(d.logger, string(feed), sequence, started, err)
		return
	}

	published := d.board.Publish(feed, sequence, arrivals, d.clock())
	logging.LogFetch(d.logger, string(feed), sequence, started, nil,
		slog.Bool("published", published))
}
