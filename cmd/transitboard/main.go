package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"nyctransit.dev/board/internal/appconf"
	"nyctransit.dev/board/internal/logging"
)

func main() {
	if err := newCLI(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCLI(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "transitboard",
		Usage:     "NYC subway and bus countdown board",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yml",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"TRANSITBOARD_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "subway-api-key",
				Usage:   "MTA GTFS-realtime API key, overrides subway.apiKey",
				EnvVars: []string{"TRANSITBOARD_SUBWAY_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "bus-api-key",
				Usage:   "MTA Bus Time API key, overrides bus.apiKey",
				EnvVars: []string{"TRANSITBOARD_BUS_API_KEY"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			onceCommand(),
			stationsCommand(),
		},
	}
}

// loadConfig reads the configuration file and applies flag and environment overrides.
func loadConfig(c *cli.Context) (appconf.Config, error) {
	cfg, err := appconf.Load(c.String("config"))
	if err != nil {
		return appconf.Config{}, err
	}

	if key := c.String("subway-api-key"); key != "" {
		cfg.Subway.APIKey = key
	}
	if key := c.String("bus-api-key"); key != "" {
		cfg.Bus.APIKey = key
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newLogger(cfg appconf.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	if cfg.Env == appconf.Production {
		return logging.NewStructuredLogger(w, level)
	}
	return logging.NewTextLogger(w, level)
}
