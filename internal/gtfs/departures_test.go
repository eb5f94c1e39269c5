package gtfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"nyctransit.dev/board/internal/directory"
	"nyctransit.dev/board/internal/models"
	"nyctransit.dev/board/internal/subway"
)

var feedNow = time.Unix(1_700_000_000, 0)

type stop struct {
	id      string
	arrival int64
	depart  int64
}

func tripEntity(tripID, routeID string, stops ...stop) *gtfsrt.FeedEntity {
	updates := make([]*gtfsrt.TripUpdate_StopTimeUpdate, 0, len(stops))
	for _, s := range stops {
		stu := &gtfsrt.TripUpdate_StopTimeUpdate{StopId: proto.String(s.id)}
		if s.arrival != 0 {
			stu.Arrival = &gtfsrt.TripUpdate_StopTimeEvent{Time: proto.Int64(s.arrival)}
		}
		if s.depart != 0 {
			stu.Departure = &gtfsrt.TripUpdate_StopTimeEvent{Time: proto.Int64(s.depart)}
		}
		updates = append(updates, stu)
	}
	return &gtfsrt.FeedEntity{
		Id: proto.String(tripID),
		TripUpdate: &gtfsrt.TripUpdate{
			Trip: &gtfsrt.TripDescriptor{
				TripId:  proto.String(tripID),
				RouteId: proto.String(routeID),
			},
			StopTimeUpdate: updates,
		},
	}
}

func feedBytes(t *testing.T, entities ...*gtfsrt.FeedEntity) []byte {
	t.Helper()
	msg := &gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(uint64(feedNow.Unix())),
		},
		Entity: entities,
	}
	b, err := proto.Marshal(msg)
	require.NoError(t, err)
	return b
}

func serveFeed(body []byte, status int, hits *atomic.Int32, apiKeys chan<- string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if apiKeys != nil {
			apiKeys <- r.Header.Get(APIKeyHeader)
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}

func newTestClient(t *testing.T, urls ...string) *Client {
	t.Helper()
	dir, err := directory.Default()
	require.NoError(t, err)
	client, err := NewClient(Config{FeedURLs: urls, APIKey: "secret"}, dir, nil)
	require.NoError(t, err)
	return client
}

func TestDepartures(t *testing.T) {
	t0 := feedNow.Unix()

	// The 6 northbound ends at Pelham Bay Park (601), the E at Jamaica Center (G05).
	numbered := feedBytes(t,
		tripEntity("6-late", "6", stop{id: "630N", arrival: t0 + 1000}, stop{id: "601N", arrival: t0 + 3000}),
		tripEntity("6-early", "6", stop{id: "630N", arrival: t0 + 400}, stop{id: "601N", arrival: t0 + 2400}),
		tripEntity("6-south", "6", stop{id: "630S", depart: t0 + 500}, stop{id: "640S", arrival: t0 + 1500}),
	)
	lettered := feedBytes(t,
		tripEntity("E-north", "E", stop{id: "F11N", arrival: t0 + 200}, stop{id: "G05N", arrival: t0 + 2000}),
		tripEntity("N-north", "N", stop{id: "R11N", arrival: t0 + 300}, stop{id: "R01N", arrival: t0 + 1200}),
		tripEntity("unknown-end", "M", stop{id: "F11S", arrival: t0 + 700}, stop{id: "XYZS", arrival: t0 + 900}),
	)

	var hits atomic.Int32
	keys := make(chan string, 2)
	first := httptest.NewServer(serveFeed(numbered, http.StatusOK, &hits, keys))
	defer first.Close()
	second := httptest.NewServer(serveFeed(lettered, http.StatusOK, &hits, keys))
	defer second.Close()

	client := newTestClient(t, first.URL, second.URL)
	responses, err := client.Departures(context.Background(), []string{"613", "612", "no-stops"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, "secret", <-keys)
	assert.Equal(t, "secret", <-keys)

	require.Len(t, responses, 2, "complexes without GTFS stops are omitted")
	assert.Equal(t, "613", responses[0].ComplexID)
	assert.Equal(t, "612", responses[1].ComplexID)
	assert.Equal(t, "Lexington Av / 51 St", responses[1].Name)

	lex51 := responses[1]
	require.Len(t, lex51.Lines, 3)
	assert.Equal(t, "6", lex51.Lines[0].Name)
	assert.Equal(t, "E", lex51.Lines[1].Name)
	assert.Equal(t, "M", lex51.Lines[2].Name)

	six := lex51.Lines[0].Departures
	assert.Equal(t, []subway.RawDeparture{
		{RouteID: "6", DestinationStationID: "359", Time: t0 + 400},
		{RouteID: "6", DestinationStationID: "359", Time: t0 + 1000},
	}, six.N, "northbound sorted by time")
	assert.Equal(t, []subway.RawDeparture{
		{RouteID: "6", DestinationStationID: "409", Time: t0 + 500},
	}, six.S, "departure time used when arrival is missing")

	assert.Equal(t, "278", lex51.Lines[1].Departures.N[0].DestinationStationID)
	assert.Equal(t, "", lex51.Lines[2].Departures.S[0].DestinationStationID)

	lex59 := responses[0]
	require.Len(t, lex59.Lines, 1)
	assert.Equal(t, "1", lex59.Lines[0].Departures.N[0].DestinationStationID)
}

func TestDeparturesNormalizeEndToEnd(t *testing.T) {
	t0 := feedNow.Unix()
	body := feedBytes(t,
		tripEntity("6-a", "6", stop{id: "630N", arrival: t0 + 400}, stop{id: "629N", arrival: t0 + 600}),
		tripEntity("6-b", "6", stop{id: "630N", arrival: t0 + 1000}, stop{id: "629N", arrival: t0 + 1200}),
	)
	server := httptest.NewServer(serveFeed(body, http.StatusOK, nil, nil))
	defer server.Close()

	client := newTestClient(t, server.URL)
	responses, err := client.Departures(context.Background(), []string{"612"})
	require.NoError(t, err)
	require.Len(t, responses, 1)

	normalizer := subway.NewNormalizer(client.dir)
	result := normalizer.Normalize(responses[0], stationConfig612(), feedNow)

	require.Len(t, result.UpTownArrivals, 2)
	assert.Equal(t, 1, result.UpTownArrivals[0].Minutes)
	assert.Equal(t, 11, result.UpTownArrivals[1].Minutes)
	assert.Equal(t, "Lexington Av / 59 St", result.UpTownArrivals[0].Destination)
}

func TestDeparturesFailures(t *testing.T) {
	good := httptest.NewServer(serveFeed(feedBytes(t), http.StatusOK, nil, nil))
	defer good.Close()

	t.Run("non-2xx fails the whole call", func(t *testing.T) {
		bad := httptest.NewServer(serveFeed([]byte("nope"), http.StatusServiceUnavailable, nil, nil))
		defer bad.Close()

		client := newTestClient(t, good.URL, bad.URL)
		responses, err := client.Departures(context.Background(), []string{"612"})
		assert.ErrorIs(t, err, ErrFeedStatus)
		assert.Nil(t, responses)
	})

	t.Run("unreachable feed", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		url := closed.URL
		closed.Close()

		client := newTestClient(t, good.URL, url)
		_, err := client.Departures(context.Background(), []string{"612"})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := newTestClient(t, good.URL)
		_, err := client.Departures(ctx, []string{"612"})
		assert.Error(t, err)
	})
}

func TestNewClientRequiresFeeds(t *testing.T) {
	_, err := NewClient(Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrNoFeeds)
}

func TestSplitStopID(t *testing.T) {
	s := func(v string) *string { return &v }

	parent, dir, ok := splitStopID(s("630N"))
	assert.True(t, ok)
	assert.Equal(t, "630", parent)
	assert.Equal(t, byte('N'), dir)

	_, _, ok = splitStopID(s("630"))
	assert.False(t, ok)
	_, _, ok = splitStopID(s("N"))
	assert.False(t, ok)
	_, _, ok = splitStopID(nil)
	assert.False(t, ok)
}

func TestConfigHTTPClient(t *testing.T) {
	assert.Equal(t, http.DefaultClient, Config{}.httpClient())
	assert.Equal(t, 2*time.Second, Config{Timeout: 2 * time.Second}.httpClient().Timeout)
	assert.Empty(t, Config{}.headers())
	assert.Equal(t, map[string]string{APIKeyHeader: "k"}, Config{APIKey: "k"}.headers())
}

func stationConfig612() models.StationConfig {
	return models.StationConfig{
		StationID:   "612",
		Dir:         models.Direction{UpTown: true, DownTown: true},
		WalkingTime: 5,
	}
}
