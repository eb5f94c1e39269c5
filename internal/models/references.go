package models

// StationReference describes a subway complex header
type StationReference struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// StopReference describes a bus stop header
type StopReference struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// ReferencesModel References model for related data
type ReferencesModel struct {
	Stations   []StationReference `json:"stations"`
	Stops      []StopReference    `json:"stops"`
	Situations []ServiceAlert     `json:"situations"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Stations:   []StationReference{},
		Stops:      []StopReference{},
		Situations: []ServiceAlert{},
	}
}
