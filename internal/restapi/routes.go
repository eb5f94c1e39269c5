package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/arrivals.json", validateAPIKey(api, api.arrivalsHandler))
	router.Handler(http.MethodGet, "/api/subway.json", validateAPIKey(api, api.subwayHandler))
	router.Handler(http.MethodGet, "/api/bus.json", validateAPIKey(api, api.busHandler))
	router.Handler(http.MethodGet, "/api/board.json", validateAPIKey(api, api.boardHandler))
	router.Handler(http.MethodGet, "/api/station/:id", validateAPIKey(api, api.stationHandler))
	router.Handler(http.MethodGet, "/api/current-time.json", validateAPIKey(api, api.currentTimeHandler))
	router.Handler(http.MethodGet, "/board.txt", validateAPIKey(api, api.boardTextHandler))

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}
