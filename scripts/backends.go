// Backends runs a fleet of mock content sources for manual router testing.
// It starts one HTTP server per source kind, each exposing /health plus
// content under the path shape that kind serves:
//
//	content-addressed-gateway  /ipfs/<cid><path>
//	cdn, origin                <path>
//	durable-storage            /storage<path>
//
// Usage:
//
//	go run backends.go -base-port 8081 -fail cdn
//
// The -fail flag makes the named kind answer 503 on /health, which is handy
// for watching the router fail over.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
)

type mockSource struct {
	kind   string
	prefix string
}

var fleet = []mockSource{
	{kind: "content-addressed-gateway", prefix: "/ipfs/"},
	{kind: "cdn", prefix: "/"},
	{kind: "origin", prefix: "/"},
	{kind: "durable-storage", prefix: "/storage/"},
}

func main() {
	basePort := flag.Int("base-port", 8081, "first port; each kind gets the next one")
	fail := flag.String("fail", "", "comma-separated kinds whose /health returns 503")
	flag.Parse()

	failing := make(map[string]bool)
	for _, kind := range strings.Split(*fail, ",") {
		if kind != "" {
			failing[kind] = true
		}
	}

	for i, src := range fleet {
		port := *basePort + i
		go serve(src, port, failing[src.kind])
		log.Printf("%s listening on :%d (failing=%v)", src.kind, port, failing[src.kind])
	}

	select {}
}

func serve(src mockSource, port int, failing bool) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if failing {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, src.prefix) {
			http.NotFound(w, r)
			return
		}
		log.Printf("[%s] %s %s from %s", src.kind, r.Method, r.URL.Path, r.RemoteAddr)
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Cache-Control", "public, max-age=60")
		fmt.Fprintf(w, "served by %s: %s\n", src.kind, r.URL.Path)
	})

	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), mux))
}
