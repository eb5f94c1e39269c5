package bus

import (
	"time"

	"nyctransit.dev/board/internal/models"
	"nyctransit.dev/board/internal/siri"
)

// UnknownDestination names journeys whose payload carries no destination.
const UnknownDestination = "Unknown"

// MinutesUntil returns the whole minutes until target, or zero when target
// has already passed.
func MinutesUntil(target, now time.Time) int {
	remaining := target.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Minute)
}

// Normalize converts one stop's response into arrivals and alerts. Journeys
// with neither an expected nor an aimed arrival time are skipped.
func Normalize(stopID string, resp *siri.Response, now time.Time) (models.BusStopArrivals, []models.ServiceAlert) {
	stop := models.BusStopArrivals{
		StopID:   stopID,
		Arrivals: []models.BusArrivalRecord{},
	}
	alerts := []models.ServiceAlert{}
	if resp == nil {
		return stop, alerts
	}

	for _, visit := range resp.Visits() {
		journey := visit.MonitoredVehicleJourney
		target, predicted, ok := arrivalTime(journey.MonitoredCall)
		if !ok {
			continue
		}

		destination := journey.DestinationName.String()
		if destination == "" {
			destination = UnknownDestination
		}

		stop.Arrivals = append(stop.Arrivals, models.BusArrivalRecord{
			Name:               journey.PublishedLineName.String(),
			Minutes:            MinutesUntil(target, now),
			IsPredicted:        predicted,
			LineRef:            journey.LineRef,
			OverallDestination: destination,
		})
	}

	for _, element := range resp.SituationElements() {
		alerts = append(alerts, models.ServiceAlert{
			SituationNumber:  element.SituationNumber,
			AffectedLineRefs: element.LineRefs(),
			Summary:          element.Summary.String(),
		})
	}

	return stop, alerts
}

func arrivalTime(call siri.MonitoredCall) (time.Time, bool, bool) {
	if call.ExpectedArrivalTime != nil {
		return *call.ExpectedArrivalTime, true, true
	}
	if call.AimedArrivalTime != nil {
		return *call.AimedArrivalTime, false, true
	}
	return time.Time{}, false, false
}

// DedupeSituations keeps the first alert per situation number. Alerts
// without a number are always kept.
func DedupeSituations(alerts []models.ServiceAlert) []models.ServiceAlert {
	result := make([]models.ServiceAlert, 0, len(alerts))
	seen := map[string]bool{}
	for _, alert := range alerts {
		if alert.SituationNumber != "" {
			if seen[alert.SituationNumber] {
				continue
			}
			seen[alert.SituationNumber] = true
		}
		result = append(result, alert)
	}
	return result
}
