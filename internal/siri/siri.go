// Package siri holds the subset of the SIRI stop-monitoring JSON envelope
// served by MTA Bus Time that the board consumes.
package siri

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Response struct {
	Siri Siri `json:"Siri"`
}

type Siri struct {
	ServiceDelivery ServiceDelivery `json:"ServiceDelivery"`
}

type ServiceDelivery struct {
	ResponseTimestamp         *time.Time                  `json:"ResponseTimestamp,omitempty"`
	StopMonitoringDelivery    []StopMonitoringDelivery    `json:"StopMonitoringDelivery"`
	SituationExchangeDelivery []SituationExchangeDelivery `json:"SituationExchangeDelivery"`
}

type StopMonitoringDelivery struct {
	ResponseTimestamp  *time.Time          `json:"ResponseTimestamp,omitempty"`
	ValidUntil         *time.Time          `json:"ValidUntil,omitempty"`
	MonitoredStopVisit []MonitoredStopVisit `json:"MonitoredStopVisit"`
	ErrorCondition     *ErrorCondition     `json:"ErrorCondition,omitempty"`
}

// ErrorCondition is how Bus Time reports a rejected request inside a 200.
type ErrorCondition struct {
	Description TextValue `json:"Description"`
	OtherError  *struct {
		ErrorText string `json:"ErrorText"`
	} `json:"OtherError,omitempty"`
}

// Message returns the most specific error text available.
func (e *ErrorCondition) Message() string {
	if e == nil {
		return ""
	}
	if e.OtherError != nil && e.OtherError.ErrorText != "" {
		return e.OtherError.ErrorText
	}
	return e.Description.String()
}

type MonitoredStopVisit struct {
	RecordedAtTime          *time.Time              `json:"RecordedAtTime,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

type MonitoredVehicleJourney struct {
	LineRef           string        `json:"LineRef"`
	DirectionRef      string        `json:"DirectionRef"`
	PublishedLineName TextValue     `json:"PublishedLineName"`
	DestinationName   TextValue     `json:"DestinationName"`
	VehicleRef        string        `json:"VehicleRef"`
	MonitoredCall     MonitoredCall `json:"MonitoredCall"`
	SituationRef      []struct {
		SituationSimpleRef string `json:"SituationSimpleRef"`
	} `json:"SituationRef,omitempty"`
}

type MonitoredCall struct {
	StopPointRef        string     `json:"StopPointRef"`
	AimedArrivalTime    *time.Time `json:"AimedArrivalTime,omitempty"`
	ExpectedArrivalTime *time.Time `json:"ExpectedArrivalTime,omitempty"`
}

type SituationExchangeDelivery struct {
	Situations Situations `json:"Situations"`
}

type Situations struct {
	PtSituationElement []PtSituationElement `json:"PtSituationElement"`
}

type PtSituationElement struct {
	SituationNumber string    `json:"SituationNumber"`
	Summary         TextValue `json:"Summary"`
	Description     TextValue `json:"Description"`
	Affects         Affects   `json:"Affects"`
}

type Affects struct {
	VehicleJourneys struct {
		AffectedVehicleJourney []AffectedVehicleJourney `json:"AffectedVehicleJourney"`
	} `json:"VehicleJourneys"`
}

type AffectedVehicleJourney struct {
	LineRef      string `json:"LineRef"`
	DirectionRef string `json:"DirectionRef"`
}

// LineRefs lists the affected line references in payload order, without
// duplicates.
func (p PtSituationElement) LineRefs() []string {
	refs := []string{}
	seen := map[string]bool{}
	for _, journey := range p.Affects.VehicleJourneys.AffectedVehicleJourney {
		if journey.LineRef == "" || seen[journey.LineRef] {
			continue
		}
		seen[journey.LineRef] = true
		refs = append(refs, journey.LineRef)
	}
	return refs
}

// TextValue is a SIRI natural language string. Bus Time emits it as a plain
// string in version 1 and as a list in version 2; list entries may be plain
// strings or {"value": ...} objects. Multiple entries are joined with a space.
type TextValue []string

func (t *TextValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TextValue{s}
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		values := make(TextValue, 0, len(items))
		for _, item := range items {
			var nested TextValue
			if err := nested.UnmarshalJSON(item); err != nil {
				return err
			}
			values = append(values, nested...)
		}
		*t = values
		return nil
	case '{':
		var obj struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*t = TextValue{obj.Value}
		return nil
	}
	return fmt.Errorf("siri: unsupported text value %s", data)
}

func (t TextValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t TextValue) String() string {
	return strings.Join(t, " ")
}

// Decode parses a stop-monitoring response body.
func Decode(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding SIRI response: %w", err)
	}
	return &resp, nil
}

// Visits returns the first delivery's monitored visits, or nil.
func (r *Response) Visits() []MonitoredStopVisit {
	deliveries := r.Siri.ServiceDelivery.StopMonitoringDelivery
	if len(deliveries) == 0 {
		return nil
	}
	return deliveries[0].MonitoredStopVisit
}

// SituationElements returns the first delivery's situations, or nil.
func (r *Response) SituationElements() []PtSituationElement {
	deliveries := r.Siri.ServiceDelivery.SituationExchangeDelivery
	if len(deliveries) == 0 {
		return nil
	}
	return deliveries[0].Situations.PtSituationElement
}

// Condition returns the error condition of the first stop-monitoring delivery.
func (r *Response) Condition() *ErrorCondition {
	deliveries := r.Siri.ServiceDelivery.StopMonitoringDelivery
	if len(deliveries) == 0 {
		return nil
	}
	return deliveries[0].ErrorCondition
}
