package app

import (
	"fmt"
	"log/slog"
	"time"

	"nyctransit.dev/board/internal/appconf"
	"nyctransit.dev/board/internal/bus"
	"nyctransit.dev/board/internal/directory"
	"nyctransit.dev/board/internal/gtfs"
	"nyctransit.dev/board/internal/poller"
	"nyctransit.dev/board/internal/subway"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware, plus the polling pipeline feeding them.
type Application struct {
	Config     appconf.Config
	Logger     *slog.Logger
	Directory  *directory.Directory
	Board      *poller.Board
	Dispatcher *poller.Dispatcher
	Scheduler  *poller.Scheduler
	// Clock is used for response timestamps; nil means time.Now.
	Clock func() time.Time
}

// Now returns the application clock's time.
func (app *Application) Now() time.Time {
	if app.Clock != nil {
		return app.Clock()
	}
	return time.Now()
}

// LoadDirectory builds the station directory, swapping in the configured
// overlay and station table where they are set.
func LoadDirectory(cfg appconf.Config) (*directory.Directory, error) {
	return directory.LoadSources(cfg.DirectoryPath, cfg.StationsPath)
}

// New wires the sources, dispatcher and scheduler for cfg. Only the feeds
// that have something configured are polled. The scheduler is not started.
func New(cfg appconf.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir, err := LoadDirectory(cfg)
	if err != nil {
		return nil, fmt.Errorf("error loading station directory: %w", err)
	}

	sources, err := buildSources(cfg, dir, logger)
	if err != nil {
		return nil, err
	}

	board := poller.NewBoard(logger)
	dispatcher := poller.NewDispatcher(board, logger, sources)

	return &Application{
		Config:     cfg,
		Logger:     logger,
		Directory:  dir,
		Board:      board,
		Dispatcher: dispatcher,
		Scheduler:  poller.NewScheduler(dispatcher, cfg.UpdateInterval(), logger),
	}, nil
}

func buildSources(cfg appconf.Config, dir *directory.Directory, logger *slog.Logger) ([]poller.ArrivalSource, error) {
	var sources []poller.ArrivalSource

	if len(cfg.Subway.Stations) > 0 {
		client, err := gtfs.NewClient(gtfs.Config{
			FeedURLs: cfg.Subway.FeedURLs,
			APIKey:   cfg.Subway.APIKey,
			Timeout:  cfg.RequestTimeout(),
		}, dir, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating subway client: %w", err)
		}
		sources = append(sources, subway.NewSource(client, dir, cfg.Subway.Stations, logger))
	}

	if len(cfg.Bus.StopIDs) > 0 {
		client := bus.NewClient(bus.Config{
			BaseURL: cfg.Bus.BaseURL,
			APIKey:  cfg.Bus.APIKey,
			Timeout: cfg.RequestTimeout(),
		}, logger)
		sources = append(sources, bus.NewSource(client, cfg.Bus.StopIDs, logger))
	}

	return sources, nil
}

// Shutdown stops polling and waits for in-flight cycles.
func (app *Application) Shutdown() {
	if app.Scheduler != nil {
		app.Scheduler.Shutdown()
	}
}
