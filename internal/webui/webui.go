package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"nyctransit.dev/board/internal/app"
)

// WebUI serves the debug pages.
type WebUI struct {
	*app.Application
}

func New(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/debug/", http.HandlerFunc(webUI.debugIndexHandler))
}
