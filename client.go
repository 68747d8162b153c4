package gtindata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gtindata/gtindata-go/credential"
	"github.com/gtindata/gtindata-go/internal/ratehint"
)

// Client is the authenticated API client for the dashboard backend. All
// resource methods funnel through one request path that attaches the
// credential, classifies every failure into an *APIError, and owns the
// 401 transition: no other code may clear the credential store on an
// unauthorized response.
//
// A Client is safe for concurrent use after Build.
type Client struct {
	config     Config
	httpClient *http.Client
	baseURL    *url.URL
	creds      credential.Store
	metrics    *Metrics
	events     *eventDispatcher
	validate   *validator.Validate

	unauthorizedMu sync.Mutex
	onUnauthorized []func()
}

// Close flushes and stops the event dispatcher. The client must not be
// used afterwards.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.events.Close()
}

// Credentials returns the store the client was built with.
func (c *Client) Credentials() credential.Store {
	return c.creds
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// OnUnauthorized registers fn to run whenever the backend answers 401.
// The credential store is already cleared when fn runs. Callbacks run
// synchronously on the goroutine of the failing call, in registration
// order; a session controller registers here to force its logged-out
// state so call sites never branch on 401 themselves.
func (c *Client) OnUnauthorized(fn func()) {
	if c == nil || fn == nil {
		return
	}
	c.unauthorizedMu.Lock()
	defer c.unauthorizedMu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

// MetricsSnapshot returns a copy of the client's counters, for the
// metrics/export packages.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// EventsDropped reports how many request events were discarded due to
// dispatcher backpressure.
func (c *Client) EventsDropped() uint64 {
	if c == nil || c.events == nil {
		return 0
	}
	return c.events.Dropped()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// checkInput validates a request payload before any network traffic.
// Violations surface as KindValidation, the same kind the backend's own
// 400 responses map to.
func (c *Client) checkInput(in any) error {
	if err := c.validate.Struct(in); err != nil {
		c.metricInc(MetricValidationRejected)
		return validationError(validationMessage(err))
	}
	return nil
}

func (c *Client) fireUnauthorized() {
	c.unauthorizedMu.Lock()
	callbacks := make([]func(), len(c.onUnauthorized))
	copy(callbacks, c.onUnauthorized)
	c.unauthorizedMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// errorBody is the backend's uniform error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// send performs one backend call. It is the only path that touches the
// wire: URL assembly, credential attachment, outcome classification,
// metrics, and event emission all happen here exactly once.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, requiresAuth bool, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	req, err := c.newRequest(ctx, method, path, query, body, requiresAuth, requestID)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := connectionError(err)
		c.finish(method, path, requestID, 0, apiErr, start)
		return apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if readErr != nil {
			apiErr := &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "response body truncated"}
			c.finish(method, path, requestID, resp.StatusCode, apiErr, start)
			return apiErr
		}
		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				apiErr := &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "malformed response body"}
				c.finish(method, path, requestID, resp.StatusCode, apiErr, start)
				return apiErr
			}
		}
		c.finish(method, path, requestID, resp.StatusCode, nil, start)
		return nil
	}

	apiErr := &APIError{
		Kind:    kindForStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
	}

	// Detail extraction is best effort; an unparseable body just means
	// no detail.
	if readErr == nil && len(raw) > 0 {
		var envelope errorBody
		if err := json.Unmarshal(raw, &envelope); err == nil {
			apiErr.Detail = envelope.Detail
		}
	}

	if apiErr.Kind == KindRateLimited {
		apiErr.RetryAfter = ratehint.RetryAfter(resp.Header, time.Now())
	}

	if apiErr.Kind == KindUnauthorized {
		if _, had := c.creds.Get(); had {
			c.metricInc(MetricSessionExpired)
		}
		_ = c.creds.Clear()
		c.fireUnauthorized()
	}

	c.finish(method, path, requestID, resp.StatusCode, apiErr, start)
	return apiErr
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any, requiresAuth bool, requestID string) (*http.Request, error) {
	ref := &url.URL{Path: path}
	target := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	userAgent := userAgentFromContext(ctx)
	if userAgent == "" {
		userAgent = c.config.UserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	if requiresAuth {
		if token, ok := c.creds.Get(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// finish records the outcome of one call: counters, latency, and the
// request event.
func (c *Client) finish(method, path, requestID string, status int, apiErr *APIError, start time.Time) {
	elapsed := time.Since(start)

	if apiErr == nil {
		c.metricInc(MetricRequestSuccess)
	} else {
		c.metricInc(metricForKind(apiErr.Kind))
	}
	if c.metrics != nil {
		c.metrics.Observe(MetricRequestLatency, elapsed)
	}

	if c.events == nil {
		return
	}

	event := RequestEvent{
		Timestamp:  start,
		Method:     method,
		Path:       path,
		Status:     status,
		RequestID:  requestID,
		DurationMS: elapsed.Milliseconds(),
	}
	if apiErr != nil {
		event.Kind = apiErr.Kind.String()
		event.Detail = apiErr.Detail
	}
	c.events.Emit(context.Background(), event)
}

// Health reports whether the backend answers its liveness probe. Any
// failure, transport included, reads as unhealthy.
func (c *Client) Health(ctx context.Context) bool {
	err := c.send(ctx, http.MethodGet, "/health", nil, nil, false, nil)
	return err == nil
}

func singleQuery(key, value string) url.Values {
	if value == "" {
		return nil
	}
	q := url.Values{}
	q.Set(key, value)
	return q
}

func trimmedPathSegment(s string) string {
	return url.PathEscape(strings.TrimSpace(s))
}
