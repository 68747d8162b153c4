package gtindata

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Version is the SDK version reported in the default User-Agent.
const Version = "0.3.0"

// Config holds every tunable of the client. Instances are configured
// during initialization and treated as immutable after Build.
type Config struct {
	// BaseURL selects the backend origin, e.g. "https://api.gtindata.com".
	// A single setting; per-endpoint overrides do not exist.
	BaseURL string

	// UserAgent is sent on every request. Defaults to "gtindata-go/<version>".
	UserAgent string

	// Timeout bounds one request end to end, headers and body included.
	// Zero disables the client-level deadline; per-call contexts still
	// apply.
	Timeout time.Duration

	Metrics MetricsConfig
	Events  EventConfig
}

// MetricsConfig controls the in-process request counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// EventConfig controls the asynchronous request-event dispatcher.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the request path
	// when the buffer is full. Dropped counts are observable via
	// Client.EventsDropped.
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		UserAgent: "gtindata-go/" + Version,
		Timeout:   30 * time.Second,
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Events: EventConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// No reference fields today; the copy keeps Build free to mutate
	// its own view without aliasing the caller's struct.
	return cfg
}

// Validate checks the configuration for values Build must reject.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrNoBaseURL
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.New("invalid base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("base URL must be http or https")
	}
	if parsed.Host == "" {
		return errors.New("base URL missing host")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Events.Enabled && c.Events.BufferSize < 0 {
		return errors.New("event buffer size must not be negative")
	}
	return nil
}
