// Package subway turns raw subway departure boards into direction bucketed,
// walking-time adjusted arrivals.
package subway

import (
	"errors"
	"fmt"
	"time"

	"nyctransit.dev/board/internal/directory"
	"nyctransit.dev/board/internal/models"
)

// Upstream labels Court Sq-23 St trips with station 281, whose own complex
// entry is missing; those trips are named after complex 606.
const (
	mislabeledDestination = "281"
	mislabeledComplex     = "606"
)

// MinutesUntil converts a departure time to display minutes. Only the last
// two characters of the minute count survive: the count is taken modulo 60,
// so anything an hour or more away wraps around, and a count of -10 or less
// loses its sign, so a departure 15 minutes past reads as 15. walkingTime is
// subtracted afterwards.
func MinutesUntil(departure int64, now time.Time, walkingTime int) int {
	nowSeconds := (now.UnixMilli() + 500) / 1000
	minutes := int(floorDiv(departure-nowSeconds, 60) % 60)
	if minutes <= -10 {
		minutes = -minutes
	}
	return minutes - walkingTime
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Normalizer resolves destinations against a Directory.
type Normalizer struct {
	dir *directory.Directory
}

// NewNormalizer creates a Normalizer backed by dir.
func NewNormalizer(dir *directory.Directory) *Normalizer {
	return &Normalizer{dir: dir}
}

// Normalize builds the arrivals for one station. Only arrivals with a
// resolvable destination and a positive minute count survive; order follows
// the response.
func (n *Normalizer) Normalize(resp StationResponse, cfg models.StationConfig, now time.Time) models.StationArrivals {
	result := models.StationArrivals{
		ComplexID:        resp.ComplexID,
		UpTownArrivals:   []models.ArrivalRecord{},
		DownTownArrivals: []models.ArrivalRecord{},
	}

	for _, line := range resp.Lines {
		if cfg.Dir.DownTown {
			result.DownTownArrivals = n.appendArrivals(result.DownTownArrivals, line.Departures.S, cfg, now)
		}
		if cfg.Dir.UpTown {
			result.UpTownArrivals = n.appendArrivals(result.UpTownArrivals, line.Departures.N, cfg, now)
		}
	}

	result.UpTownArrivals = dropNonPositive(result.UpTownArrivals)
	result.DownTownArrivals = dropNonPositive(result.DownTownArrivals)
	return result
}

func (n *Normalizer) appendArrivals(dst []models.ArrivalRecord, departures []RawDeparture, cfg models.StationConfig, now time.Time) []models.ArrivalRecord {
	for _, dep := range departures {
		if cfg.IgnoresRoute(dep.RouteID) {
			continue
		}
		destination, ok := n.DestinationName(dep.DestinationStationID)
		if !ok {
			continue
		}
		dst = append(dst, models.ArrivalRecord{
			RouteID:     dep.RouteID,
			Minutes:     MinutesUntil(dep.Time, now, cfg.WalkingTime),
			Destination: destination,
		})
	}
	return dst
}

// DestinationName resolves a raw destination ID to a display name. Raw
// station IDs are first mapped to their complex.
func (n *Normalizer) DestinationName(stationID string) (string, bool) {
	if stationID == "" {
		return "", false
	}
	if stationID == mislabeledDestination {
		return n.dir.ComplexName(mislabeledComplex)
	}

	complexID := stationID
	if id, ok := n.dir.ComplexIDForStation(stationID); ok {
		complexID = id
	}
	if complexID == mislabeledDestination {
		return n.dir.ComplexName(mislabeledComplex)
	}
	return n.dir.ComplexName(complexID)
}

func dropNonPositive(arrivals []models.ArrivalRecord) []models.ArrivalRecord {
	kept := arrivals[:0]
	for _, a := range arrivals {
		if a.Minutes > 0 {
			kept = append(kept, a)
		}
	}
	return kept
}

// ErrMalformedResponse marks a station response that cannot be normalized.
var ErrMalformedResponse = errors.New("malformed subway response")

func validate(resp StationResponse) error {
	if resp.ComplexID == "" {
		return fmt.Errorf("%w: station without complexId", ErrMalformedResponse)
	}
	for i, line := range resp.Lines {
		for _, list := range [][]RawDeparture{line.Departures.S, line.Departures.N} {
			for _, dep := range list {
				if dep.RouteID == "" {
					return fmt.Errorf("%w: complex %s line %d has a departure without routeId", ErrMalformedResponse, resp.ComplexID, i)
				}
			}
		}
	}
	return nil
}
