package app

import (
	"context"
	"log/slog"
)

const boardWatchBuffer = 8

// WatchBoard subscribes to board updates and logs each one at debug level
// until ctx is done. The subscription exists by the time WatchBoard returns,
// so updates from a scheduler started afterwards are all seen. The returned
// channel is closed once the watcher has unsubscribed.
func (app *Application) WatchBoard(ctx context.Context) <-chan struct{} {
	events, unsubscribe := app.Board.Subscribe(boardWatchBuffer)
	logger := app.Logger.With(slog.String("component", "board_watch"))
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				attrs := []any{
					slog.String("event", string(event.Name)),
					slog.Uint64("sequence", event.Sequence),
				}
				if snapshot := event.Snapshot; snapshot != nil {
					attrs = append(attrs, slog.Int("stations", len(snapshot.Stations)))
					if snapshot.Bus != nil {
						attrs = append(attrs, slog.Int("bus_stops", len(snapshot.Bus.Stops)))
					}
				}
				logger.Debug("board_updated", attrs...)
			}
		}
	}()

	return done
}
