package subway

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyctransit.dev/board/internal/directory"
	"nyctransit.dev/board/internal/logging"
	"nyctransit.dev/board/internal/models"
)

type stubFeed struct {
	responses []StationResponse
	err       error
	requested []string
}

func (f *stubFeed) Departures(_ context.Context, complexIDs []string) ([]StationResponse, error) {
	f.requested = complexIDs
	return f.responses, f.err
}

func newTestSource(t *testing.T, feed Feed, buf *bytes.Buffer) *Source {
	t.Helper()
	dir, err := directory.Default()
	require.NoError(t, err)
	stations := []models.StationConfig{
		bothDirections(5),
		{StationID: "613", Dir: models.Direction{UpTown: true}, WalkingTime: 0},
	}
	return NewSource(feed, dir, stations, logging.NewStructuredLogger(buf, -4))
}

func TestSourceFetch(t *testing.T) {
	feed := &stubFeed{responses: []StationResponse{
		{ComplexID: "613", Lines: []Line{{Departures: Departures{N: []RawDeparture{{RouteID: "N", DestinationStationID: "1", Time: at(300)}}}}}},
		{ComplexID: "612", Lines: []Line{{Departures: Departures{N: []RawDeparture{{RouteID: "6", DestinationStationID: "359", Time: at(400)}}}}}},
	}}
	var buf bytes.Buffer
	source := newTestSource(t, feed, &buf)

	arrivals, err := source.Fetch(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, models.FeedSubway, source.Feed())
	assert.Equal(t, []string{"612", "613"}, feed.requested)
	require.Len(t, arrivals.Stations, 2)
	assert.Equal(t, "613", arrivals.Stations[0].ComplexID)
	assert.Equal(t, "Astoria-Ditmars Blvd", arrivals.Stations[0].UpTownArrivals[0].Destination)
	assert.Equal(t, 1, arrivals.Stations[1].UpTownArrivals[0].Minutes)
	assert.Nil(t, arrivals.Bus)
	assert.NotContains(t, buf.String(), "station_mismatch", "order alone is not a mismatch")
}

func TestSourceFetchMismatch(t *testing.T) {
	feed := &stubFeed{responses: []StationResponse{
		{ComplexID: "612"},
		{ComplexID: "999"},
	}}
	var buf bytes.Buffer
	source := newTestSource(t, feed, &buf)

	arrivals, err := source.Fetch(context.Background(), testNow)
	require.NoError(t, err)

	require.Len(t, arrivals.Stations, 1)
	assert.Equal(t, "612", arrivals.Stations[0].ComplexID)
	assert.Contains(t, buf.String(), "station_mismatch")
	assert.Contains(t, buf.String(), "999")
}

func TestSourceFetchErrors(t *testing.T) {
	upstream := errors.New("connection refused")

	t.Run("feed failure", func(t *testing.T) {
		source := newTestSource(t, &stubFeed{err: upstream}, &bytes.Buffer{})
		_, err := source.Fetch(context.Background(), testNow)
		assert.ErrorIs(t, err, upstream)
	})

	t.Run("malformed response", func(t *testing.T) {
		source := newTestSource(t, &stubFeed{responses: []StationResponse{{}}}, &bytes.Buffer{})
		_, err := source.Fetch(context.Background(), testNow)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestSameSet(t *testing.T) {
	assert.True(t, sameSet([]string{"1", "2"}, []string{"2", "1"}))
	assert.False(t, sameSet([]string{"1", "2"}, []string{"1"}))
	assert.False(t, sameSet([]string{"1"}, []string{"2"}))
	assert.True(t, sameSet(nil, []string{}))
}
