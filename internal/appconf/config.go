package appconf

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"nyctransit.dev/board/internal/models"
)

const (
	DefaultPort             = 4000
	DefaultUpdateIntervalMS = 300000
	DefaultRateLimit        = 100
	DefaultBusBaseURL       = "https://bustime.mta.info/api/siri/stop-monitoring.json"
)

// DefaultSubwayFeedURLs are the NYCT GTFS-realtime endpoints covering every
// subway division.
var DefaultSubwayFeedURLs = []string{
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs",
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-ace",
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-bdfm",
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-g",
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-jz",
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-nqrw",
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-l",
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-si",
}

// ErrNothingConfigured is returned when neither a subway station nor a bus stop is configured.
var ErrNothingConfigured = errors.New("no subway stations or bus stops configured")

// SubwayConfig configures the subway departures feed.
type SubwayConfig struct {
	APIKey   string                 `yaml:"apiKey"`
	FeedURLs []string               `yaml:"feedURLs" validate:"dive,url"`
	Stations []models.StationConfig `yaml:"stations" validate:"dive"`
}

// StationIDs returns the configured complex IDs in configuration order.
func (c SubwayConfig) StationIDs() []string {
	ids := make([]string, 0, len(c.Stations))
	for _, station := range c.Stations {
		ids = append(ids, station.StationID)
	}
	return ids
}

// BusConfig configures the SIRI stop-monitoring feed.
type BusConfig struct {
	APIKey  string   `yaml:"apiKey"`
	BaseURL string   `yaml:"baseURL" validate:"omitempty,url"`
	StopIDs []string `yaml:"stopIds" validate:"dive,required"`
}

// Config holds all the configuration settings for the Application.
type Config struct {
	Env              Environment  `yaml:"-"`
	EnvName          string       `yaml:"env" validate:"omitempty,oneof=development test production"`
	Port             int          `yaml:"port" validate:"gte=0,lte=65535"`
	ApiKeys          []string     `yaml:"apiKeys"`
	RateLimit        int          `yaml:"rateLimit" validate:"gte=0"`
	UpdateIntervalMS int          `yaml:"updateIntervalMS" validate:"gte=0"`
	RequestTimeoutMS int          `yaml:"requestTimeoutMS" validate:"gte=0"`
	DirectoryPath    string       `yaml:"directory"`
	StationsPath     string       `yaml:"stationsFile"`
	Verbose          bool         `yaml:"verbose"`
	Subway           SubwayConfig `yaml:"subway"`
	Bus              BusConfig    `yaml:"bus"`
}

// UpdateInterval is the polling period between fetch cycles.
func (c Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMS) * time.Millisecond
}

// RequestTimeout bounds a single upstream request. Zero leaves the HTTP
// client's own behaviour in place.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Load reads and validates the YAML configuration at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and cross-field rules.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if len(c.Subway.Stations) == 0 && len(c.Bus.StopIDs) == 0 {
		return ErrNothingConfigured
	}

	seen := make(map[string]bool, len(c.Subway.Stations))
	for _, station := range c.Subway.Stations {
		if seen[station.StationID] {
			return fmt.Errorf("invalid config: station %s configured twice", station.StationID)
		}
		seen[station.StationID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.EnvName == "" {
		c.EnvName = Development.String()
	}
	c.Env = EnvFlagToEnvironment(c.EnvName)
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.UpdateIntervalMS == 0 {
		c.UpdateIntervalMS = DefaultUpdateIntervalMS
	}
	if len(c.Subway.FeedURLs) == 0 {
		c.Subway.FeedURLs = append([]string(nil), DefaultSubwayFeedURLs...)
	}
	if c.Bus.BaseURL == "" {
		c.Bus.BaseURL = DefaultBusBaseURL
	}
}
