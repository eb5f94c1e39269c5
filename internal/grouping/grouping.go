// Package grouping buckets normalized arrivals for presentation: subway
// arrivals by route, bus arrivals by line and destination.
package grouping

import (
	"nyctransit.dev/board/internal/directory"
	"nyctransit.dev/board/internal/models"
)

// MaxTimes is how many upcoming times a group presents.
const MaxTimes = 3

// TrainGroup is one route within a direction bucket.
type TrainGroup struct {
	Route       string `json:"route"`
	Destination string `json:"destination"`
	Minutes     []int  `json:"minutes"`
	Express     bool   `json:"express"`
}

// BusTime is one presented bus arrival.
type BusTime struct {
	Minutes     int  `json:"minutes"`
	IsPredicted bool `json:"isPredicted"`
}

// BusGroup is one (line, destination) pair at a stop.
type BusGroup struct {
	Line        string    `json:"line"`
	Destination string    `json:"destination"`
	Times       []BusTime `json:"times"`
}

// CanonicalRoute folds legacy Staten Island Railway codes into "SIR".
func CanonicalRoute(routeID string) string {
	switch routeID {
	case "SI", "SS":
		return "SIR"
	}
	return routeID
}

// IsExpress reports whether a route key denotes an express variant, e.g. "6X".
func IsExpress(route string) bool {
	return len(route) == 2
}

// GroupTrains groups one direction bucket by canonical route in encounter
// order. The first destination seen wins.
func GroupTrains(arrivals []models.ArrivalRecord) []TrainGroup {
	groups := []TrainGroup{}
	index := map[string]int{}

	for _, arrival := range arrivals {
		key := CanonicalRoute(arrival.RouteID)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, TrainGroup{
				Route:       key,
				Destination: arrival.Destination,
				Minutes:     []int{},
				Express:     IsExpress(key),
			})
		}
		if len(groups[i].Minutes) < MaxTimes {
			groups[i].Minutes = append(groups[i].Minutes, arrival.Minutes)
		}
	}

	return groups
}

type busKey struct {
	line        string
	destination string
}

// GroupBuses groups a stop's arrivals by line and destination, dropping
// non-positive times. Groups left without times are omitted.
func GroupBuses(arrivals []models.BusArrivalRecord) []BusGroup {
	groups := []BusGroup{}
	index := map[busKey]int{}

	for _, arrival := range arrivals {
		key := busKey{line: arrival.Name, destination: arrival.OverallDestination}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, BusGroup{
				Line:        arrival.Name,
				Destination: arrival.OverallDestination,
				Times:       []BusTime{},
			})
		}
		if arrival.Minutes > 0 && len(groups[i].Times) < MaxTimes {
			groups[i].Times = append(groups[i].Times, BusTime{
				Minutes:     arrival.Minutes,
				IsPredicted: arrival.IsPredicted,
			})
		}
	}

	kept := groups[:0]
	for _, group := range groups {
		if len(group.Times) > 0 {
			kept = append(kept, group)
		}
	}
	return kept
}

// StationBoard is the presentation of one complex.
type StationBoard struct {
	ComplexID string       `json:"complexId"`
	Name      string       `json:"name"`
	Lines     []string     `json:"lines"`
	UpTown    []TrainGroup `json:"upTown"`
	DownTown  []TrainGroup `json:"downTown"`
}

// StopBoard is the presentation of one bus stop.
type StopBoard struct {
	StopID string     `json:"stopId"`
	Name   string     `json:"name"`
	Lines  []string   `json:"lines"`
	Groups []BusGroup `json:"groups"`
}

// Board is the whole presentation handed to the display layer.
type Board struct {
	Stations []StationBoard `json:"stations"`
	Stops    []StopBoard    `json:"stops"`
}

// Station presents one complex. Unknown complexes fall back to their ID as
// the name.
func Station(arrivals models.StationArrivals, dir *directory.Directory) StationBoard {
	board := StationBoard{
		ComplexID: arrivals.ComplexID,
		Name:      arrivals.ComplexID,
		Lines:     []string{},
		UpTown:    GroupTrains(arrivals.UpTownArrivals),
		DownTown:  GroupTrains(arrivals.DownTownArrivals),
	}
	if dir != nil {
		if complex, ok := dir.Complex(arrivals.ComplexID); ok {
			board.Name = complex.Name
			board.Lines = complex.Lines
		}
	}
	return board
}

// Stop presents one bus stop.
func Stop(arrivals models.BusStopArrivals, dir *directory.Directory) StopBoard {
	board := StopBoard{
		StopID: arrivals.StopID,
		Name:   arrivals.StopID,
		Lines:  []string{},
		Groups: GroupBuses(arrivals.Arrivals),
	}
	if dir != nil {
		if stop, ok := dir.BusStop(arrivals.StopID); ok {
			board.Name = stop.Name
			board.Lines = stop.Lines
		}
	}
	return board
}

// Build presents a snapshot. Stations with no arrivals and stops with no
// remaining groups are skipped.
func Build(result *models.FetchResult, dir *directory.Directory) Board {
	board := Board{
		Stations: []StationBoard{},
		Stops:    []StopBoard{},
	}
	if result == nil {
		return board
	}

	for _, station := range result.Stations {
		if station.IsEmpty() {
			continue
		}
		board.Stations = append(board.Stations, Station(station, dir))
	}

	if result.Bus != nil {
		for _, stop := range result.Bus.Stops {
			presented := Stop(stop, dir)
			if len(presented.Groups) == 0 {
				continue
			}
			board.Stops = append(board.Stops, presented)
		}
	}

	return board
}
