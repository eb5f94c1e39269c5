package poller

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"nyctransit.dev/board/internal/models"
)

// EventName is what display consumers subscribe to.
type EventName string

const (
	SubwayArrivalsUpdated EventName = "subway arrivals updated"
	BusArrivalsUpdated    EventName = "bus arrivals updated"
)

// Event announces a newly published snapshot.
type Event struct {
	Name     EventName
	Sequence uint64
	Snapshot *models.FetchResult
}

func eventName(feed models.Feed) EventName {
	if feed == models.FeedBus {
		return BusArrivalsUpdated
	}
	return SubwayArrivalsUpdated
}

// Board holds the latest published FetchResult. Each feed accepts a result
// only when its sequence is newer than the one already published, so a slow
// cycle finishing after a faster, later one is discarded.
type Board struct {
	current atomic.Pointer[models.FetchResult]

	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
	logger      *slog.Logger
}

func NewBoard(logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Board{
		subscribers: map[int]chan Event{},
		logger:      logger.With(slog.String("component", "board")),
	}
	b.current.Store(&models.FetchResult{Stations: []models.StationArrivals{}})
	return b
}

// Snapshot returns the current result. Callers must not modify it.
func (b *Board) Snapshot() *models.FetchResult {
	return b.current.Load()
}

// Publish replaces the feed's part of the snapshot. It reports false when
// sequence is not newer than the last published one for that feed.
func (b *Board) Publish(feed models.Feed, sequence uint64, arrivals models.Arrivals, at time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := *b.current.Load()
	switch feed {
	case models.FeedSubway:
		if sequence <= next.SubwaySequence {
			b.logStale(feed, sequence, next.SubwaySequence)
			return false
		}
		next.Stations = arrivals.Stations
		if next.Stations == nil {
			next.Stations = []models.StationArrivals{}
		}
		next.SubwaySequence = sequence
		next.SubwayUpdatedAt = at
	case models.FeedBus:
		if sequence <= next.BusSequence {
			b.logStale(feed, sequence, next.BusSequence)
			return false
		}
		next.Bus = arrivals.Bus
		next.BusSequence = sequence
		next.BusUpdatedAt = at
	default:
		b.logger.Warn("unknown feed", slog.String("feed", string(feed)))
		return false
	}

	snapshot := &next
	b.current.Store(snapshot)

	event := Event{Name: eventName(feed), Sequence: sequence, Snapshot: snapshot}
	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Debug("subscriber lagging, event dropped", slog.Int("subscriber", id))
		}
	}
	return true
}

func (b *Board) logStale(feed models.Feed, sequence, published uint64) {
	b.logger.Debug("discarding stale result",
		slog.String("feed", string(feed)),
		slog.Uint64("sequence", sequence),
		slog.Uint64("published", published))
}

// Subscribe registers for update events. Sends never block; a subscriber
// that falls more than buffer events behind misses events. The returned
// function unsubscribes and closes the channel.
func (b *Board) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
			close(ch)
		})
	}
}
