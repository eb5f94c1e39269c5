package gtfs

import (
	"net/http"
	"time"
)

// APIKeyHeader carries the MTA developer key on feed requests.
const APIKeyHeader = "x-api-key"

type Config struct {
	FeedURLs []string
	APIKey   string
	// Timeout bounds each feed request. Zero leaves the HTTP client default.
	Timeout    time.Duration
	HTTPClient *http.Client
}

func (config Config) headers() map[string]string {
	headers := map[string]string{}
	if config.APIKey != "" {
		headers[APIKeyHeader] = config.APIKey
	}
	return headers
}

func (config Config) httpClient() *http.Client {
	if config.HTTPClient != nil {
		return config.HTTPClient
	}
	if config.Timeout > 0 {
		return &http.Client{Timeout: config.Timeout}
	}
	return http.DefaultClient
}
