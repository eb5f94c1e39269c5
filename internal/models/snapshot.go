package models

import "time"

// Feed names one upstream arrival source.
type Feed string

const (
	FeedSubway Feed = "subway"
	FeedBus    Feed = "bus"
)

// Arrivals is what an arrival source produces for one cycle. Exactly one of
// the fields is populated, matching the source's feed.
type Arrivals struct {
	Stations []StationArrivals
	Bus      *BusArrivals
}

// FetchResult is the published snapshot handed to display consumers. Values
// are replaced wholesale and must be treated as read-only.
type FetchResult struct {
	Stations []StationArrivals `json:"stations"`
	Bus      *BusArrivals      `json:"bus,omitempty"`

	SubwaySequence  uint64    `json:"subwaySequence"`
	BusSequence     uint64    `json:"busSequence"`
	SubwayUpdatedAt time.Time `json:"subwayUpdatedAt,omitzero"`
	BusUpdatedAt    time.Time `json:"busUpdatedAt,omitzero"`
}

// Station returns the arrivals published for complexID.
func (r *FetchResult) Station(complexID string) (StationArrivals, bool) {
	if r == nil {
		return StationArrivals{}, false
	}
	for _, station := range r.Stations {
		if station.ComplexID == complexID {
			return station, true
		}
	}
	return StationArrivals{}, false
}
