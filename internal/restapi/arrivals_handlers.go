package restapi

import (
	"net/http"

	"nyctransit.dev/board/internal/display"
	"nyctransit.dev/board/internal/grouping"
	"nyctransit.dev/board/internal/models"
	"nyctransit.dev/board/internal/utils"
)

// arrivalsHandler returns the whole published snapshot
func (api *RestAPI) arrivalsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Board.Snapshot()
	api.sendResponse(w, r, models.NewEntryResponse(snapshot, api.references(snapshot)))
}

func (api *RestAPI) subwayHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Board.Snapshot()
	subwayOnly := &models.FetchResult{Stations: snapshot.Stations}
	api.sendResponse(w, r, models.NewListResponse(snapshot.Stations, api.references(subwayOnly)))
}

func (api *RestAPI) busHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Board.Snapshot()
	bus := snapshot.Bus
	if bus == nil {
		bus = &models.BusArrivals{Stops: []models.BusStopArrivals{}, Situations: []models.ServiceAlert{}}
	}
	busOnly := &models.FetchResult{Bus: bus}
	api.sendResponse(w, r, models.NewEntryResponse(bus, api.references(busOnly)))
}

// boardHandler returns the grouped presentation of every station and stop
func (api *RestAPI) boardHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Board.Snapshot()
	board := grouping.Build(snapshot, api.Directory)
	api.sendResponse(w, r, models.NewEntryResponse(board, api.references(snapshot)))
}

func (api *RestAPI) stationHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	snapshot := api.Board.Snapshot()
	arrivals, ok := snapshot.Station(id)
	if !ok {
		if _, known := api.Directory.Complex(id); !known {
			api.sendNotFound(w, r)
			return
		}
		arrivals = models.StationArrivals{
			ComplexID:        id,
			UpTownArrivals:   []models.ArrivalRecord{},
			DownTownArrivals: []models.ArrivalRecord{},
		}
	}

	refs := api.references(&models.FetchResult{Stations: []models.StationArrivals{arrivals}})
	api.sendResponse(w, r, models.NewEntryResponse(grouping.Station(arrivals, api.Directory), refs))
}

// boardTextHandler renders the countdown board as plain text
func (api *RestAPI) boardTextHandler(w http.ResponseWriter, r *http.Request) {
	board := grouping.Build(api.Board.Snapshot(), api.Directory)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := display.Render(w, board); err != nil {
		api.Logger.Error("failed to render board", "error", err)
	}
}

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewOKResponse(models.NewCurrentTimeData(api.Now())))
}
