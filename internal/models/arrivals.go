package models

import "slices"

// Direction flags for a configured station. "N" departures feed the uptown
// bucket and "S" departures the downtown bucket.
type Direction struct {
	UpTown   bool `json:"upTown" yaml:"upTown"`
	DownTown bool `json:"downTown" yaml:"downTown"`
}

// StationConfig is one configured subway complex. It is immutable for the
// lifetime of a run.
type StationConfig struct {
	StationID   string    `json:"stationId" yaml:"stationId" validate:"required"`
	Dir         Direction `json:"dir" yaml:"dir"`
	WalkingTime int       `json:"walkingTime" yaml:"walkingTime" validate:"gte=0"`
	Ignore      []string  `json:"ignore" yaml:"ignore"`
}

// IgnoresRoute reports whether departures of routeID are filtered out at this station.
func (s StationConfig) IgnoresRoute(routeID string) bool {
	return slices.Contains(s.Ignore, routeID)
}

// ArrivalRecord is a single normalized subway arrival. Minutes already has the
// station walking time subtracted.
type ArrivalRecord struct {
	RouteID     string `json:"routeId"`
	Minutes     int    `json:"minutes"`
	Destination string `json:"destination"`
}

// StationArrivals holds the direction buckets for one complex.
type StationArrivals struct {
	ComplexID        string          `json:"complexId"`
	UpTownArrivals   []ArrivalRecord `json:"upTownArrivals"`
	DownTownArrivals []ArrivalRecord `json:"downTownArrivals"`
}

// IsEmpty reports whether neither direction has an arrival.
func (s StationArrivals) IsEmpty() bool {
	return len(s.UpTownArrivals) == 0 && len(s.DownTownArrivals) == 0
}

// BusArrivalRecord is a single normalized bus arrival. IsPredicted is false
// when Minutes was computed from the scheduled (aimed) time.
type BusArrivalRecord struct {
	Name               string `json:"name"`
	Minutes            int    `json:"minutes"`
	IsPredicted        bool   `json:"isPredicted"`
	LineRef            string `json:"lineRef"`
	OverallDestination string `json:"overallDestination"`
}

// BusStopArrivals holds the arrivals for one monitored stop.
type BusStopArrivals struct {
	StopID   string             `json:"stopId"`
	Arrivals []BusArrivalRecord `json:"arrivals"`
}

// ServiceAlert is a rider facing advisory surfaced by the bus feed.
type ServiceAlert struct {
	SituationNumber  string   `json:"situationNumber,omitempty"`
	AffectedLineRefs []string `json:"affectedLineRefs"`
	Summary          string   `json:"summary"`
}

// BusArrivals is the combined result of one bus cycle.
type BusArrivals struct {
	Stops      []BusStopArrivals `json:"stops"`
	Situations []ServiceAlert    `json:"situations"`
}
