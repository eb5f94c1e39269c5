package subway

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"nyctransit.dev/board/internal/directory"
	"nyctransit.dev/board/internal/models"
)

// Feed returns raw departure boards for a set of complexes in one request.
type Feed interface {
	Departures(ctx context.Context, complexIDs []string) ([]StationResponse, error)
}

// Source fetches and normalizes every configured station.
type Source struct {
	feed       Feed
	normalizer *Normalizer
	stations   []models.StationConfig
	logger     *slog.Logger
}

// NewSource creates the subway arrival source.
func NewSource(feed Feed, dir *directory.Directory, stations []models.StationConfig, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		feed:       feed,
		normalizer: NewNormalizer(dir),
		stations:   slices.Clone(stations),
		logger:     logger.With(slog.String("component", "subway_source")),
	}
}

func (s *Source) Feed() models.Feed {
	return models.FeedSubway
}

// StationIDs lists the configured complexes in configuration order.
func (s *Source) StationIDs() []string {
	ids := make([]string, len(s.stations))
	for i, station := range s.stations {
		ids[i] = station.StationID
	}
	return ids
}

// Fetch issues a single departures request covering all stations. A returned
// set that differs from the requested one is logged and otherwise tolerated;
// complexes that were not requested are skipped.
func (s *Source) Fetch(ctx context.Context, now time.Time) (models.Arrivals, error) {
	requested := s.StationIDs()

	responses, err := s.feed.Departures(ctx, requested)
	if err != nil {
		return models.Arrivals{}, fmt.Errorf("subway departures: %w", err)
	}

	returned := make([]string, 0, len(responses))
	for _, resp := range responses {
		if err := validate(resp); err != nil {
			return models.Arrivals{}, err
		}
		returned = append(returned, resp.ComplexID)
	}
	if !sameSet(requested, returned) {
		s.logger.Warn("station_mismatch",
			slog.Any("requested", requested),
			slog.Any("returned", returned))
	}

	stations := make([]models.StationArrivals, 0, len(responses))
	for _, resp := range responses {
		cfg, ok := s.config(resp.ComplexID)
		if !ok {
			continue
		}
		stations = append(stations, s.normalizer.Normalize(resp, cfg, now))
	}

	return models.Arrivals{Stations: stations}, nil
}

func (s *Source) config(complexID string) (models.StationConfig, bool) {
	for _, station := range s.stations {
		if station.StationID == complexID {
			return station, true
		}
	}
	return models.StationConfig{}, false
}

func sameSet(a, b []string) bool {
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(slices.Compact(x), slices.Compact(y)) && len(a) == len(b)
}
