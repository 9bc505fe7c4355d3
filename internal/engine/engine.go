package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/angeloszaimis/content-router/internal/dispatch"
	"github.com/angeloszaimis/content-router/internal/health"
	"github.com/angeloszaimis/content-router/internal/metrics"
	"github.com/angeloszaimis/content-router/internal/source"
)

// Engine is the health-aware content router. It owns the registry and
// wires the monitor and dispatcher to it; everything else is delegation.
type Engine struct {
	registry   *source.Registry
	monitor    *health.Monitor
	dispatcher *dispatch.Dispatcher
}

// Options bundle the tunables an embedder may override. Zero values fall
// back to the component defaults.
type Options struct {
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
	FetchTimeout  time.Duration
	Collector     *metrics.Collector
}

// New builds an engine over the initial source set. The health monitor is
// not started; call Start once the embedder is ready for background probes.
func New(initial []source.ContentSource, logger *slog.Logger, opts Options) *Engine {
	registry := source.NewRegistry(initial)

	var monitorOpts []health.Option
	if opts.ProbeInterval > 0 {
		monitorOpts = append(monitorOpts, health.WithInterval(opts.ProbeInterval))
	}
	if opts.ProbeTimeout > 0 {
		monitorOpts = append(monitorOpts, health.WithProbeTimeout(opts.ProbeTimeout))
	}
	if opts.Collector != nil {
		monitorOpts = append(monitorOpts, health.WithCollector(opts.Collector))
	}

	var dispatchOpts []dispatch.Option
	if opts.FetchTimeout > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithFetchTimeout(opts.FetchTimeout))
	}
	if opts.Collector != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithCollector(opts.Collector))
	}

	return &Engine{
		registry:   registry,
		monitor:    health.NewMonitor(registry, logger, monitorOpts...),
		dispatcher: dispatch.NewDispatcher(registry, logger, dispatchOpts...),
	}
}

// Fetch returns the first successful result from the ranked healthy
// sources, or nil when every one of them has been exhausted.
func (e *Engine) Fetch(ctx context.Context, path, contentHash string) *dispatch.Result {
	return e.dispatcher.Fetch(ctx, path, contentHash)
}

// AddSource registers a new content source. It is ranked among its
// priority peers until the next probe cycle incorporates its health.
func (e *Engine) AddSource(s source.ContentSource) {
	e.registry.AddSource(s)
}

// RemoveSource drops every source with exactly this endpoint.
func (e *Engine) RemoveSource(endpoint string) {
	e.registry.RemoveSource(endpoint)
}

// Snapshot returns a copy of the current ranked source list.
func (e *Engine) Snapshot() []source.ContentSource {
	return e.registry.Snapshot()
}

// Start begins background health probing. See health.Monitor.Start for the
// scheduling contract.
func (e *Engine) Start() {
	e.monitor.Start()
}

// Stop halts background health probing. Idempotent.
func (e *Engine) Stop() {
	e.monitor.Stop()
}

// RunProbeCycle runs one synchronous probe cycle. Exposed for embedders
// that want settled health state before serving, and for tests.
func (e *Engine) RunProbeCycle(ctx context.Context) {
	e.monitor.RunProbeCycle(ctx)
}
