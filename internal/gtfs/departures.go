// Package gtfs is the subway departures client. It reads the MTA GTFS-realtime
// feeds and reshapes the trip updates into per-complex departure boards.
package gtfs

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/jamespfennell/gtfs"
	"nyctransit.dev/board/internal/directory"
	"nyctransit.dev/board/internal/subway"
)

// ErrNoFeeds is returned by NewClient when no feed URL is configured.
var ErrNoFeeds = errors.New("no GTFS-realtime feed configured")

// Client implements subway.Feed.
type Client struct {
	config Config
	dir    *directory.Directory
	logger *slog.Logger
}

func NewClient(config Config, dir *directory.Directory, logger *slog.Logger) (*Client, error) {
	if len(config.FeedURLs) == 0 {
		return nil, ErrNoFeeds
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config: config,
		dir:    dir,
		logger: logger.With(slog.String("component", "gtfs_subway_client")),
	}, nil
}

// Departures builds one board per requested complex, in request order.
// Complexes without known GTFS stops are left out.
func (c *Client) Departures(ctx context.Context, complexIDs []string) ([]subway.StationResponse, error) {
	feeds, err := loadAllRealtime(ctx, c.config)
	if err != nil {
		return nil, err
	}

	stopToComplex := map[string]string{}
	boards := map[string]*board{}
	for _, complexID := range complexIDs {
		stops := c.dir.GTFSStopsForComplex(complexID)
		if len(stops) == 0 {
			c.logger.Debug("complex has no GTFS stops", slog.String("complexId", complexID))
			continue
		}
		for _, stop := range stops {
			stopToComplex[stop] = complexID
		}
		boards[complexID] = &board{lines: map[string]int{}}
	}

	for _, feed := range feeds {
		for _, trip := range feed.Trips {
			destination := c.destination(trip)
			for _, stu := range trip.StopTimeUpdates {
				parent, direction, ok := splitStopID(stu.StopID)
				if !ok {
					continue
				}
				complexID, ok := stopToComplex[parent]
				if !ok {
					continue
				}
				when, ok := eventTime(stu)
				if !ok {
					continue
				}
				boards[complexID].add(trip.ID.RouteID, direction, subway.RawDeparture{
					RouteID:              trip.ID.RouteID,
					DestinationStationID: destination,
					Time:                 when,
				})
			}
		}
	}

	responses := make([]subway.StationResponse, 0, len(boards))
	for _, complexID := range complexIDs {
		b, ok := boards[complexID]
		if !ok {
			continue
		}
		name, _ := c.dir.ComplexName(complexID)
		responses = append(responses, subway.StationResponse{
			ComplexID: complexID,
			Name:      name,
			Lines:     b.sorted(),
		})
	}
	return responses, nil
}

// destination is the raw station ID of the trip's final stop, or empty.
func (c *Client) destination(trip gtfs.Trip) string {
	if len(trip.StopTimeUpdates) == 0 {
		return ""
	}
	last := trip.StopTimeUpdates[len(trip.StopTimeUpdates)-1]
	parent, _, ok := splitStopID(last.StopID)
	if !ok {
		return ""
	}
	station, ok := c.dir.StationForGTFSStop(parent)
	if !ok {
		return ""
	}
	return station.ID
}

// splitStopID splits a directional stop like "630N" into "630" and 'N'.
func splitStopID(stopID *string) (string, byte, bool) {
	if stopID == nil || len(*stopID) < 2 {
		return "", 0, false
	}
	id := *stopID
	direction := id[len(id)-1]
	if direction != 'N' && direction != 'S' {
		return "", 0, false
	}
	return id[:len(id)-1], direction, true
}

func eventTime(stu gtfs.StopTimeUpdate) (int64, bool) {
	if stu.Arrival != nil && stu.Arrival.Time != nil {
		return stu.Arrival.Time.Unix(), true
	}
	if stu.Departure != nil && stu.Departure.Time != nil {
		return stu.Departure.Time.Unix(), true
	}
	return 0, false
}

type board struct {
	lines map[string]int
	order []subway.Line
}

func (b *board) add(routeID string, direction byte, dep subway.RawDeparture) {
	i, ok := b.lines[routeID]
	if !ok {
		i = len(b.order)
		b.lines[routeID] = i
		b.order = append(b.order, subway.Line{
			Name: routeID,
			Departures: subway.Departures{
				S: []subway.RawDeparture{},
				N: []subway.RawDeparture{},
			},
		})
	}
	line := &b.order[i]
	if direction == 'N' {
		line.Departures.N = append(line.Departures.N, dep)
	} else {
		line.Departures.S = append(line.Departures.S, dep)
	}
}

func (b *board) sorted() []subway.Line {
	for i := range b.order {
		for _, deps := range [][]subway.RawDeparture{b.order[i].Departures.N, b.order[i].Departures.S} {
			sort.SliceStable(deps, func(x, y int) bool { return deps[x].Time < deps[y].Time })
		}
	}
	if b.order == nil {
		return []subway.Line{}
	}
	return b.order
}
