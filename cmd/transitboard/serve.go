package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/urfave/cli/v2"

	"nyctransit.dev/board/internal/app"
	"nyctransit.dev/board/internal/logging"
	"nyctransit.dev/board/internal/restapi"
	"nyctransit.dev/board/internal/webui"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "poll the feeds and serve the board over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port, overrides the configured port",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if port := c.Int("port"); port > 0 {
				cfg.Port = port
			}

			logger := newLogger(cfg, c.App.ErrWriter)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			logging.LogOperation(logger, "directory_loaded", directoryAttrs(application)...)

			api := restapi.NewRestAPI(application)
			srv := newServer(application, api, logger)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			watched := application.WatchBoard(ctx)
			application.Scheduler.Start()

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env.String())
				serverErr <- srv.ListenAndServe()
			}()

			select {
			case err = <-serverErr:
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				err = srv.Shutdown(shutdownCtx)
			}

			api.Shutdown()
			application.Shutdown()
			stop()
			<-watched

			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
}

func newServer(application *app.Application, api *restapi.RestAPI, logger *slog.Logger) *http.Server {
	router := httprouter.New()
	api.SetRoutes(router)
	webui.New(application).SetWebUIRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", application.Config.Port),
		Handler:      api.WithMiddleware(router),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func directoryAttrs(application *app.Application) []slog.Attr {
	complexes, stations, busStops := application.Directory.Stats()
	return []slog.Attr{
		slog.Int("complexes", complexes),
		slog.Int("stations", stations),
		slog.Int("bus_stops", busStops),
	}
}
