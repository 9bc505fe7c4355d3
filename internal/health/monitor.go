package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/angeloszaimis/content-router/internal/metrics"
	"github.com/angeloszaimis/content-router/internal/source"
)

const (
	// DefaultInterval is the default spacing between probe cycles.
	DefaultInterval = 30 * time.Second

	// DefaultProbeTimeout bounds a single health probe.
	DefaultProbeTimeout = 5 * time.Second
)

// Monitor keeps the registry's health and latency fields current. It is
// the only writer of those fields and the only caller of Rank.
type Monitor struct {
	registry  *source.Registry
	client    *http.Client
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	collector *metrics.Collector

	mutex  sync.Mutex
	cancel context.CancelFunc
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides the probe cycle interval.
func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		m.interval = interval
	}
}

// WithProbeTimeout overrides the per-probe timeout.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(m *Monitor) {
		m.timeout = timeout
	}
}

// WithCollector sets the metrics collector probe events are emitted to.
func WithCollector(collector *metrics.Collector) Option {
	return func(m *Monitor) {
		m.collector = collector
	}
}

// NewMonitor creates a monitor over registry. The monitor does nothing
// until Start is called.
func NewMonitor(registry *source.Registry, logger *slog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		registry: registry,
		interval: DefaultInterval,
		timeout:  DefaultProbeTimeout,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.client = &http.Client{
		Timeout: m.timeout,
	}

	return m
}

// Start fires one probe cycle immediately in the background and then runs
// a cycle every interval until Stop. Start returns before the first cycle
// completes; health state is not yet settled when it does. Calling Start
// on a running monitor replaces the schedule instead of stacking a second
// one.
func (m *Monitor) Start() {
	m.mutex.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mutex.Unlock()

	go m.run(ctx)
}

// Stop cancels the probe schedule. Safe to call on a stopped monitor.
func (m *Monitor) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Monitor) run(ctx context.Context) {
	m.RunProbeCycle(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Health monitor stopped")
			return
		case <-ticker.C:
			m.RunProbeCycle(ctx)
		}
	}
}

// RunProbeCycle probes every source currently in the registry concurrently,
// waits for the slowest probe (bounded by the probe timeout), records the
// outcomes and re-ranks the registry once. Probe failures are recorded as
// unhealthy and never surface to the caller.
func (m *Monitor) RunProbeCycle(ctx context.Context) {
	sources := m.registry.Snapshot()

	var wg sync.WaitGroup
	for _, s := range sources {
		wg.Add(1)
		go func(s source.ContentSource) {
			defer wg.Done()
			m.probe(ctx, s)
		}(s)
	}
	wg.Wait()

	m.registry.Rank()
}

// probe issues GET <endpoint>/health and records the binary outcome.
// Latency is the measured elapsed time in both outcomes, up to the point
// of failure or timeout, never a sentinel value.
func (m *Monitor) probe(ctx context.Context, s source.ContentSource) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	healthy := false

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, s.Endpoint+"/health", nil)
	if err == nil {
		res, doErr := m.client.Do(req)
		if doErr == nil {
			healthy = res.StatusCode >= 200 && res.StatusCode < 300
			res.Body.Close()
		}
	}

	elapsed := time.Since(start)
	latencyMS := float64(elapsed) / float64(time.Millisecond)

	changed := m.registry.SetHealth(s.Endpoint, healthy, latencyMS)
	if changed {
		if healthy {
			m.logger.Info("Content source is back up",
				slog.String("source", s.Label()),
				slog.Float64("latency_ms", latencyMS))
		} else {
			m.logger.Warn("Content source is down",
				slog.String("source", s.Label()),
				slog.Float64("latency_ms", latencyMS))
		}
	}

	m.emitEvent(metrics.Event{
		Type:      metrics.EventProbeCompleted,
		Timestamp: time.Now(),
		Source:    s.Label(),
		Duration:  elapsed,
		Healthy:   healthy,
	})
}

func (m *Monitor) emitEvent(event metrics.Event) {
	if m.collector == nil {
		return
	}
	m.collector.Emit(event)
}
