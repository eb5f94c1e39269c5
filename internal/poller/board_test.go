package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyctransit.dev/board/internal/models"
)

func subwayArrivals(complexID string) models.Arrivals {
	return models.Arrivals{Stations: []models.StationArrivals{{ComplexID: complexID}}}
}

func TestBoardInitialSnapshot(t *testing.T) {
	board := NewBoard(nil)

	snapshot := board.Snapshot()
	require.NotNil(t, snapshot)
	assert.Empty(t, snapshot.Stations)
	assert.Nil(t, snapshot.Bus)
	assert.Zero(t, snapshot.SubwaySequence)
}

func TestBoardDiscardsStaleResults(t *testing.T) {
	board := NewBoard(nil)
	at := time.Unix(1_700_000_000, 0)

	assert.True(t, board.Publish(models.FeedSubway, 2, subwayArrivals("newer"), at))
	assert.False(t, board.Publish(models.FeedSubway, 1, subwayArrivals("older"), at.Add(time.Second)),
		"a cycle that finishes late must not overwrite a newer one")
	assert.False(t, board.Publish(models.FeedSubway, 2, subwayArrivals("same"), at))

	snapshot := board.Snapshot()
	assert.Equal(t, "newer", snapshot.Stations[0].ComplexID)
	assert.Equal(t, uint64(2), snapshot.SubwaySequence)
	assert.Equal(t, at, snapshot.SubwayUpdatedAt)
}

func TestBoardFeedsAreIndependent(t *testing.T) {
	board := NewBoard(nil)
	at := time.Unix(1_700_000_000, 0)

	require.True(t, board.Publish(models.FeedSubway, 5, subwayArrivals("612"), at))
	bus := &models.BusArrivals{Stops: []models.BusStopArrivals{{StopID: "401701"}}}
	require.True(t, board.Publish(models.FeedBus, 3, models.Arrivals{Bus: bus}, at), "bus has its own sequence")

	snapshot := board.Snapshot()
	assert.Equal(t, "612", snapshot.Stations[0].ComplexID)
	assert.Same(t, bus, snapshot.Bus)
	assert.Equal(t, uint64(3), snapshot.BusSequence)

	assert.False(t, board.Publish(models.Feed("ferry"), 9, models.Arrivals{}, at))
}

func TestBoardSnapshotsAreReplacedNotMutated(t *testing.T) {
	board := NewBoard(nil)
	at := time.Unix(1_700_000_000, 0)

	require.True(t, board.Publish(models.FeedSubway, 1, subwayArrivals("first"), at))
	held := board.Snapshot()
	require.True(t, board.Publish(models.FeedSubway, 2, subwayArrivals("second"), at))

	assert.Equal(t, "first", held.Stations[0].ComplexID)
	assert.Equal(t, "second", board.Snapshot().Stations[0].ComplexID)
}

func TestBoardSubscribe(t *testing.T) {
	board := NewBoard(nil)
	at := time.Unix(1_700_000_000, 0)

	events, unsubscribe := board.Subscribe(1)

	require.True(t, board.Publish(models.FeedBus, 1, models.Arrivals{Bus: &models.BusArrivals{}}, at))
	// buffer is full, this event is dropped instead of blocking
	require.True(t, board.Publish(models.FeedSubway, 1, subwayArrivals("612"), at))

	event := <-events
	assert.Equal(t, BusArrivalsUpdated, event.Name)
	assert.Equal(t, uint64(1), event.Sequence)
	assert.NotNil(t, event.Snapshot.Bus)

	unsubscribe()
	unsubscribe()
	_, open := <-events
	assert.False(t, open)

	assert.True(t, board.Publish(models.FeedSubway, 2, subwayArrivals("612"), at))
}
