package main

import (
	"net/http"

	"github.com/angeloszaimis/content-router/internal/engine"
	"github.com/angeloszaimis/content-router/internal/handler"
	"github.com/angeloszaimis/content-router/internal/metrics"
)

func setupRouter(gatewayHandler *handler.GatewayHandler, eng *engine.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", gatewayHandler.ServeHTTP)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/sources", handler.Sources(eng))

	return mux
}
