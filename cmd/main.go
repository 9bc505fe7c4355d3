package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/content-router/config"
	"github.com/angeloszaimis/content-router/internal/engine"
	"github.com/angeloszaimis/content-router/internal/handler"
	"github.com/angeloszaimis/content-router/internal/httpserver"
	"github.com/angeloszaimis/content-router/internal/metrics"
	"github.com/angeloszaimis/content-router/internal/source"
	"github.com/angeloszaimis/content-router/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector(1000, log)
	collector.Start(ctx)

	eng, err := buildEngine(cfg, log, collector)
	if err != nil {
		log.Error("Failed to build routing engine", slog.Any("err", err))
		os.Exit(1)
	}

	gatewayHandler := handler.NewGatewayHandler(log, eng, buildNameResolver(cfg), collector)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(gatewayHandler, eng))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	eng.Start()
	defer eng.Stop()

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Content router started",
		slog.String("address", cfg.Server.Address),
		slog.Int("sources", len(cfg.Sources)))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting content router", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func buildEngine(cfg *config.Config, log *slog.Logger, collector *metrics.Collector) (*engine.Engine, error) {
	probeInterval, err := cfg.ProbeInterval()
	if err != nil {
		return nil, err
	}

	probeTimeout, err := cfg.ProbeTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := cfg.FetchTimeout()
	if err != nil {
		return nil, err
	}

	sources := make([]source.ContentSource, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		sources = append(sources, source.ContentSource{
			Kind:     source.Kind(sc.Kind),
			Endpoint: sc.Endpoint,
			Priority: sc.Priority,
			Region:   sc.Region,
		})
	}

	return engine.New(sources, log, engine.Options{
		ProbeInterval: probeInterval,
		ProbeTimeout:  probeTimeout,
		FetchTimeout:  fetchTimeout,
		Collector:     collector,
	}), nil
}

func buildNameResolver(cfg *config.Config) *handler.StaticNameResolver {
	entries := make(map[string]handler.Resolution, len(cfg.Names))
	for _, n := range cfg.Names {
		entries[n.Name] = handler.Resolution{
			Path:        n.Path,
			ContentHash: n.ContentHash,
		}
	}
	return handler.NewStaticNameResolver(entries)
}
