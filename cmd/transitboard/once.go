package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/urfave/cli/v2"

	"nyctransit.dev/board/internal/app"
	"nyctransit.dev/board/internal/display"
	"nyctransit.dev/board/internal/grouping"
)

func onceCommand() *cli.Command {
	return &cli.Command{
		Name:  "once",
		Usage: "run a single fetch cycle and print the board",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the grouped board as JSON instead of text",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "give up on the cycle after this long",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, c.App.ErrWriter)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			application.Dispatcher.Dispatch(ctx)

			board := grouping.Build(application.Board.Snapshot(), application.Directory)
			if c.Bool("json") {
				encoder := json.NewEncoder(c.App.Writer)
				encoder.SetIndent("", "  ")
				return encoder.Encode(board)
			}
			return display.Render(c.App.Writer, board)
		},
	}
}
