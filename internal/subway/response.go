package subway

// RawDeparture is one upstream departure. DestinationStationID is empty when
// the feed could not name the trip's terminal.
type RawDeparture struct {
	RouteID              string `json:"routeId"`
	DestinationStationID string `json:"destinationStationId,omitempty"`
	Time                 int64  `json:"time"`
}

// Departures holds the two directional lists of a line. N is northbound, S
// is southbound.
type Departures struct {
	S []RawDeparture `json:"S"`
	N []RawDeparture `json:"N"`
}

// Line is one route serving the station.
type Line struct {
	Name       string     `json:"name,omitempty"`
	Departures Departures `json:"departures"`
}

// StationResponse is the raw departure board for one complex.
type StationResponse struct {
	ComplexID string `json:"complexId"`
	Name      string `json:"name,omitempty"`
	Lines     []Line `json:"lines"`
}
