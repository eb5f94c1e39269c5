package gtfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/jamespfennell/gtfs"
	"nyctransit.dev/board/internal/logging"
)

// ErrFeedStatus is returned when a feed answers with a non-2xx status.
var ErrFeedStatus = errors.New("unexpected feed status")

func loadRealtimeData(ctx context.Context, client *http.Client, source string, headers map[string]string) (*gtfs.Realtime, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", source, nil)
	if err != nil {
		return nil, err
	}

	for key, value := range headers {
		req.Header.Add(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "gtfs_realtime_downloader")),
		"http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFeedStatus, source, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return gtfs.ParseRealtime(b, &gtfs.ParseRealtimeOptions{})
}

// loadAllRealtime downloads every feed in parallel. The result keeps the
// order of config.FeedURLs; any single failure fails the whole load.
func loadAllRealtime(ctx context.Context, config Config) ([]*gtfs.Realtime, error) {
	logger := logging.FromContext(ctx).With(slog.String("component", "gtfs_realtime"))

	client := config.httpClient()
	headers := config.headers()

	feeds := make([]*gtfs.Realtime, len(config.FeedURLs))
	errs := make([]error, len(config.FeedURLs))

	var wg sync.WaitGroup
	for i, url := range config.FeedURLs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feeds[i], errs[i] = loadRealtimeData(ctx, client, url, headers)
			if errs[i] != nil {
				logging.LogError(logger, "Error loading GTFS-RT feed", errs[i], slog.String("url", url))
			}
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return feeds, nil
}
