package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"nyctransit.dev/board/internal/app"
)

const unknownName = "(not in directory)"

func stationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "list the configured stations and bus stops",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			dir, err := app.LoadDirectory(cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)

			for _, station := range cfg.Subway.Stations {
				name, lines := unknownName, ""
				if complex, ok := dir.Complex(station.StationID); ok {
					name, lines = complex.Name, strings.Join(complex.Lines, " ")
				}
				fmt.Fprintf(tw, "subway\t%s\t%s\t%s\twalk %dmin\t%s\n",
					station.StationID, name, lines, station.WalkingTime, directions(station.Dir.UpTown, station.Dir.DownTown))
			}

			for _, stopID := range cfg.Bus.StopIDs {
				name, lines := unknownName, ""
				if stop, ok := dir.BusStop(stopID); ok {
					name, lines = stop.Name, strings.Join(stop.Lines, " ")
				}
				fmt.Fprintf(tw, "bus\t%s\t%s\t%s\t\t\n", stopID, name, lines)
			}

			return tw.Flush()
		},
	}
}

func directions(upTown, downTown bool) string {
	switch {
	case upTown && downTown:
		return "uptown+downtown"
	case upTown:
		return "uptown"
	case downTown:
		return "downtown"
	}
	return "none"
}
