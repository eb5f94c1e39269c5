package webui

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/davecgh/go-spew/spew"

	"nyctransit.dev/board/internal/grouping"
	"nyctransit.dev/board/internal/utils"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"snapshot", "stations", "bus", "board", "config", "scheduler", "directory"}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
	KeySuffix string
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}

func writeDebugData(w http.ResponseWriter, title string, data interface{}, keySuffix string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       dumper.Sdump(data),
		DataTypes: dataTypes,
		KeySuffix: keySuffix,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.RequestHasInvalidAPIKey(r) {
		http.Error(w, "permission denied", http.StatusUnauthorized)
		return
	}
	keySuffix := "&key=" + url.QueryEscape(r.URL.Query().Get("key"))

	dataType := r.URL.Query().Get("dataType")
	if err := utils.ValidateChoice(dataType, dataTypes); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		writeDebugData(w, "Choose a data type", map[string]string{"error": "dataType " + err.Error()}, keySuffix)
		return
	}

	snapshot := webUI.Board.Snapshot()

	var data interface{}
	var title string

	switch dataType {
	case "stations":
		data = snapshot.Stations
		title = "Subway - Stations"
	case "bus":
		data = snapshot.Bus
		title = "Bus - Stops and Situations"
	case "board":
		data = grouping.Build(snapshot, webUI.Directory)
		title = "Board - Grouped"
	case "config":
		cfg := webUI.Config
		cfg.ApiKeys = nil
		cfg.Subway.APIKey = redact(cfg.Subway.APIKey)
		cfg.Bus.APIKey = redact(cfg.Bus.APIKey)
		data = cfg
		title = "Configuration"
	case "scheduler":
		data = map[string]string{
			"state":    webUI.Scheduler.State().String(),
			"interval": webUI.Scheduler.Interval().String(),
		}
		title = "Refresh Scheduler"
	case "directory":
		complexes, stations, busStops := webUI.Directory.Stats()
		data = map[string]int{"complexes": complexes, "stations": stations, "busStops": busStops}
		title = "Station Directory"
	default:
		data = snapshot
		title = "Published Snapshot"
	}

	writeDebugData(w, title, data, keySuffix)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[redacted]"
}
