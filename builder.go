package gtindata

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gtindata/gtindata-go/credential"
)

// Builder assembles a Client. Configure it once, call Build, and treat
// the result as immutable.
type Builder struct {
	config     Config
	httpClient *http.Client
	creds      credential.Store
	sink       EventSink

	built bool
}

// New returns a Builder loaded with defaults.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the backend origin.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithHTTPClient supplies the underlying HTTP client. When set, its own
// timeout wins over Config.Timeout.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithCredentials supplies the credential store. Required.
func (b *Builder) WithCredentials(store credential.Store) *Builder {
	b.creds = store
	return b
}

// WithTimeout bounds each request end to end.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithUserAgent overrides the default User-Agent.
func (b *Builder) WithUserAgent(userAgent string) *Builder {
	b.config.UserAgent = userAgent
	return b
}

// WithEventSink enables request events and routes them to sink.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	b.config.Events.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and constructs the Client. A
// Builder can build at most once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.creds == nil {
		return nil, ErrNoCredentialStore
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		// Validate already parsed it; this is unreachable in practice.
		return nil, err
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	b.built = true

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		baseURL:    baseURL,
		creds:      b.creds,
		metrics:    NewMetrics(cfg.Metrics),
		events:     newEventDispatcher(cfg.Events, b.sink),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}
