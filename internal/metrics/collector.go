package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestReceived EventType = "request_received"
	EventProbeCompleted  EventType = "probe_completed"
	EventFetchAttempt    EventType = "fetch_attempt"
	EventFetchCompleted  EventType = "fetch_completed"
	EventFetchExhausted  EventType = "fetch_exhausted"
)

// Outcome labels used on probe and fetch attempt counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Source    string
	Duration  time.Duration
	Outcome   string
	Healthy   bool
}

// Collector applies events to the Prometheus vectors from a dedicated
// goroutine. Producers must use non-blocking sends; a full channel drops
// the event rather than stalling the probe or fetch path.
type Collector struct {
	eventCh chan Event
	metrics *RouterMetrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		metrics: Default(),
		logger:  logger,
	}
}

// EventChannel returns the send side of the event pipeline.
func (c *Collector) EventChannel() chan<- Event {
	return c.eventCh
}

// Emit is a non-blocking send; the event is dropped if the buffer is full.
func (c *Collector) Emit(event Event) {
	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventRequestReceived:
		c.metrics.RequestsTotal.Inc()

	case EventProbeCompleted:
		outcome := OutcomeFailure
		healthy := 0.0
		if event.Healthy {
			outcome = OutcomeSuccess
			healthy = 1.0
		}
		c.metrics.ProbesTotal.WithLabelValues(event.Source, outcome).Inc()
		c.metrics.ProbeDurationSeconds.WithLabelValues(event.Source).Observe(event.Duration.Seconds())
		c.metrics.SourceHealthy.WithLabelValues(event.Source).Set(healthy)

	case EventFetchAttempt:
		c.metrics.FetchAttemptsTotal.WithLabelValues(event.Source, event.Outcome).Inc()

	case EventFetchCompleted:
		c.metrics.FetchDurationSeconds.WithLabelValues(event.Source).Observe(event.Duration.Seconds())

	case EventFetchExhausted:
		c.metrics.FetchExhaustedTotal.Inc()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}
