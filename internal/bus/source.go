package bus

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"nyctransit.dev/board/internal/models"
	"nyctransit.dev/board/internal/siri"
)

// StopMonitor fetches the raw response for one stop.
type StopMonitor interface {
	StopMonitoring(ctx context.Context, stopID string) (*siri.Response, error)
}

// Source fetches every configured stop concurrently. The cycle succeeds only
// when every stop succeeds.
type Source struct {
	monitor StopMonitor
	stopIDs []string
	logger  *slog.Logger
}

func NewSource(monitor StopMonitor, stopIDs []string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		monitor: monitor,
		stopIDs: slices.Clone(stopIDs),
		logger:  logger.With(slog.String("component", "bus_source")),
	}
}

func (s *Source) Feed() models.Feed {
	return models.FeedBus
}

// StopIDs lists the configured stops.
func (s *Source) StopIDs() []string {
	return slices.Clone(s.stopIDs)
}

type stopResult struct {
	index  int
	stop   models.BusStopArrivals
	alerts []models.ServiceAlert
}

func (s *Source) Fetch(ctx context.Context, now time.Time) (models.Arrivals, error) {
	p := pool.NewWithResults[stopResult]().WithContext(ctx).WithCancelOnError()

	for i, stopID := range s.stopIDs {
		p.Go(func(ctx context.Context) (stopResult, error) {
			resp, err := s.monitor.StopMonitoring(ctx, stopID)
			if err != nil {
				return stopResult{}, err
			}
			stop, alerts := Normalize(stopID, resp, now)
			s.logger.Debug("bus stop fetched",
				slog.String("stopId", stopID),
				slog.Int("arrivals", len(stop.Arrivals)))
			return stopResult{index: i, stop: stop, alerts: alerts}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return models.Arrivals{}, fmt.Errorf("bus stop monitoring: %w", err)
	}

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

	combined := &models.BusArrivals{
		Stops:      make([]models.BusStopArrivals, 0, len(results)),
		Situations: []models.ServiceAlert{},
	}
	for _, result := range results {
		combined.Stops = append(combined.Stops, result.stop)
		combined.Situations = append(combined.Situations, result.alerts...)
	}
	combined.Situations = DedupeSituations(combined.Situations)

	return models.Arrivals{Bus: combined}, nil
}
