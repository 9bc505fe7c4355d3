package dispatch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/content-router/internal/metrics"
	"github.com/angeloszaimis/content-router/internal/resolver"
	"github.com/angeloszaimis/content-router/internal/source"
)

const (
	// DefaultFetchTimeout bounds a single fetch attempt against one source.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultContentType is assumed when a source omits the header.
	DefaultContentType = "application/octet-stream"

	// DefaultCacheControl is assumed when a source omits the header.
	DefaultCacheControl = "public, max-age=3600"
)

// Result is one successfully fetched piece of content. Source carries the
// "<kind>:<endpoint>" label of the backend that served it and LatencyMS the
// wall-clock duration of the winning attempt.
type Result struct {
	Body         []byte
	ContentType  string
	CacheControl string
	Source       string
	LatencyMS    float64
}

// Dispatcher tries healthy sources in rank order until one succeeds.
type Dispatcher struct {
	registry  *source.Registry
	client    *http.Client
	timeout   time.Duration
	logger    *slog.Logger
	collector *metrics.Collector
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFetchTimeout overrides the per-attempt timeout.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithCollector sets the metrics collector fetch events are emitted to.
func WithCollector(collector *metrics.Collector) Option {
	return func(d *Dispatcher) {
		d.collector = collector
	}
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *source.Registry, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		timeout:  DefaultFetchTimeout,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.client = &http.Client{
		Timeout: d.timeout,
	}

	return d
}

// Fetch tries each healthy source in the registry's current rank order and
// returns the first successful result. A nil return means every healthy
// source was exhausted, or there were none; that is a normal outcome and
// the engine stays usable for the next call. Attempts are strictly
// sequential, each bounded by the fetch timeout, and a source is never
// retried within one call.
func (d *Dispatcher) Fetch(ctx context.Context, path, contentHash string) *Result {
	for _, s := range d.registry.Snapshot() {
		if !s.Healthy {
			continue
		}

		url, ok := resolver.URL(s, path, contentHash)
		if !ok {
			// Unresolvable for this source, e.g. a content-addressed
			// gateway without a CID. Skip without any network call.
			d.emitAttempt(s, metrics.OutcomeSkipped)
			continue
		}

		result := d.attempt(ctx, s, url)
		if result != nil {
			return result
		}
	}

	d.emitEvent(metrics.Event{
		Type:      metrics.EventFetchExhausted,
		Timestamp: time.Now(),
	})
	return nil
}

// attempt issues one GET against one source. Any failure, including a
// non-2xx status, returns nil so the dispatcher advances to the next
// source.
func (d *Dispatcher) attempt(ctx context.Context, s source.ContentSource, url string) *Result {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		d.emitAttempt(s, metrics.OutcomeFailure)
		return nil
	}
	req.Header.Set("Accept", "*/*")

	res, err := d.client.Do(req)
	if err != nil {
		d.logger.Debug("Fetch attempt failed",
			slog.String("source", s.Label()),
			slog.String("error", err.Error()))
		d.emitAttempt(s, metrics.OutcomeFailure)
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		d.logger.Debug("Fetch attempt returned non-2xx",
			slog.String("source", s.Label()),
			slog.Int("status", res.StatusCode))
		d.emitAttempt(s, metrics.OutcomeFailure)
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		d.emitAttempt(s, metrics.OutcomeFailure)
		return nil
	}

	elapsed := time.Since(start)

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}

	cacheControl := res.Header.Get("Cache-Control")
	if cacheControl == "" {
		cacheControl = DefaultCacheControl
	}

	d.emitAttempt(s, metrics.OutcomeSuccess)
	d.emitEvent(metrics.Event{
		Type:      metrics.EventFetchCompleted,
		Timestamp: time.Now(),
		Source:    s.Label(),
		Duration:  elapsed,
	})

	return &Result{
		Body:         body,
		ContentType:  contentType,
		CacheControl: cacheControl,
		Source:       s.Label(),
		LatencyMS:    float64(elapsed) / float64(time.Millisecond),
	}
}

func (d *Dispatcher) emitAttempt(s source.ContentSource, outcome string) {
	d.emitEvent(metrics.Event{
		Type:      metrics.EventFetchAttempt,
		Timestamp: time.Now(),
		Source:    s.Label(),
		Outcome:   outcome,
	})
}

func (d *Dispatcher) emitEvent(event metrics.Event) {
	if d.collector == nil {
		return
	}
	d.collector.Emit(event)
}
