package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/content-router/internal/dispatch"
	"github.com/angeloszaimis/content-router/internal/metrics"
	"github.com/angeloszaimis/content-router/internal/source"
)

// Fetcher is the slice of the engine the gateway handler needs.
type Fetcher interface {
	Fetch(ctx context.Context, path, contentHash string) *dispatch.Result
}

// GatewayHandler serves content requests of the form /<name>/<rest...>.
// The name is resolved to a (path, contentHash) pair and handed to the
// engine; the handler owns all HTTP semantics the engine deliberately
// avoids.
type GatewayHandler struct {
	logger           *slog.Logger
	fetcher          Fetcher
	names            NameResolver
	metricsCollector *metrics.Collector
}

func NewGatewayHandler(logger *slog.Logger, fetcher Fetcher, names NameResolver, collector *metrics.Collector) *GatewayHandler {
	return &GatewayHandler{
		logger:           logger,
		fetcher:          fetcher,
		names:            names,
		metricsCollector: collector,
	}
}

func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name, rest := splitName(r.URL.Path)
	if name == "" {
		http.Error(w, "missing content name", http.StatusNotFound)
		return
	}

	h.logger.Info("Received content request",
		slog.String("request_id", requestID),
		slog.String("name", name),
		slog.String("path", rest),
		slog.String("from", r.RemoteAddr))

	h.emitEvent(metrics.Event{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
	})

	resolution, ok := h.names.ResolveName(name)
	if !ok {
		h.logger.Warn("Unknown content name",
			slog.String("request_id", requestID),
			slog.String("name", name))
		http.Error(w, "unknown content name", http.StatusNotFound)
		return
	}

	path := resolution.Path + rest

	result := h.fetcher.Fetch(r.Context(), path, resolution.ContentHash)
	if result == nil {
		h.logger.Warn("No content source could serve request",
			slog.String("request_id", requestID),
			slog.String("name", name),
			slog.String("path", path))
		http.Error(w, "no content source available", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Cache-Control", result.CacheControl)
	w.Header().Set("X-Content-Source", result.Source)

	if r.Method == http.MethodHead {
		return
	}
	w.Write(result.Body)
}

// splitName separates the leading path segment from the remainder.
// "/docs/guide/intro" becomes ("docs", "/guide/intro").
func splitName(requestPath string) (name, rest string) {
	trimmed := strings.TrimPrefix(requestPath, "/")
	if trimmed == "" {
		return "", ""
	}

	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i], trimmed[i:]
	}
	return trimmed, ""
}

// Sources returns a handler serving the current ranked source list as JSON.
type sourceLister interface {
	Snapshot() []source.ContentSource
}

func Sources(lister sourceLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lister.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func (h *GatewayHandler) emitEvent(event metrics.Event) {
	if h.metricsCollector == nil {
		return
	}
	h.metricsCollector.Emit(event)
}
