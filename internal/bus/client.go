// Package bus fetches MTA Bus Time stop monitoring data and normalizes it
// into per-stop arrivals and service alerts.
package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"nyctransit.dev/board/internal/logging"
	"nyctransit.dev/board/internal/siri"
)

const DefaultBaseURL = "https://bustime.mta.info/api/siri/stop-monitoring.json"

var (
	// ErrStatus is returned when Bus Time answers with a non-2xx status.
	ErrStatus = errors.New("unexpected bus time status")
	// ErrRejected is returned when Bus Time reports an error condition in a 2xx body.
	ErrRejected = errors.New("bus time rejected request")
)

type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each stop request. Zero leaves the HTTP client default.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues stop-monitoring requests.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
		if config.Timeout > 0 {
			httpClient = &http.Client{Timeout: config.Timeout}
		}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  config.APIKey,
		http:    httpClient,
		logger:  logger.With(slog.String("component", "bus_time_client")),
	}
}

func (c *Client) requestURL(stopID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid bus time base URL: %w", err)
	}
	q := u.Query()
	q.Set("version", "1")
	q.Set("key", c.apiKey)
	q.Set("OperatorRef", "MTA")
	q.Set("MonitoringRef", stopID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StopMonitoring fetches the monitoring response for one stop.
func (c *Client) StopMonitoring(ctx context.Context, stopID string) (*siri.Response, error) {
	target, err := c.requestURL(stopID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stop %s: %w", stopID, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: stop %s returned %d", ErrStatus, stopID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stop %s: %w", stopID, err)
	}

	decoded, err := siri.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("stop %s: %w", stopID, err)
	}
	if condition := decoded.Condition(); condition != nil {
		return nil, fmt.Errorf("%w: stop %s: %s", ErrRejected, stopID, condition.Message())
	}
	return decoded, nil
}
