package restapi

import (
	"encoding/json"
	"net/http"

	"nyctransit.dev/board/internal/models"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	response.CurrentTime = api.Now().UnixMilli()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}

// references describes every station and stop present in result.
func (api *RestAPI) references(result *models.FetchResult) models.ReferencesModel {
	refs := models.NewEmptyReferences()
	if result == nil {
		return refs
	}

	for _, station := range result.Stations {
		ref := models.StationReference{ID: station.ComplexID, Name: station.ComplexID, Lines: []string{}}
		if complex, ok := api.Directory.Complex(station.ComplexID); ok {
			ref.Name = complex.Name
			ref.Lines = complex.Lines
		}
		refs.Stations = append(refs.Stations, ref)
	}

	if result.Bus != nil {
		for _, stop := range result.Bus.Stops {
			ref := models.StopReference{ID: stop.StopID, Name: stop.StopID, Lines: []string{}}
			if busStop, ok := api.Directory.BusStop(stop.StopID); ok {
				ref.Name = busStop.Name
				ref.Lines = busStop.Lines
			}
			refs.Stops = append(refs.Stops, ref)
		}
		refs.Situations = append(refs.Situations, result.Bus.Situations...)
	}

	return refs
}
