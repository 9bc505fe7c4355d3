package dispatch_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/content-router/internal/dispatch"
	"github.com/angeloszaimis/content-router/internal/source"
)

func TestDispatch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dispatch Suite")
}

var _ = Describe("Dispatcher", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	})

	newDispatcher := func(sources ...source.ContentSource) *dispatch.Dispatcher {
		registry := source.NewRegistry(sources)
		for _, s := range sources {
			if s.Healthy {
				registry.SetHealth(s.Endpoint, true, 1)
			}
		}
		registry.Rank()
		return dispatch.NewDispatcher(registry, log)
	}

	Describe("Fetch", func() {
		It("falls back to the next source on a non-2xx response", func() {
			broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer broken.Close()

			working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// No Content-Type header on purpose; Go's default sniffing
				// is bypassed by writing the header explicitly.
				w.Header()["Content-Type"] = nil
				w.Write([]byte("hello"))
			}))
			defer working.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindCDN, Endpoint: broken.URL, Priority: 1, Healthy: true},
				source.ContentSource{Kind: source.KindCDN, Endpoint: working.URL, Priority: 2, Healthy: true},
			)

			result := d.Fetch(context.Background(), "/x", "")
			Expect(result).NotTo(BeNil())
			Expect(string(result.Body)).To(Equal("hello"))
			Expect(result.ContentType).To(Equal("application/octet-stream"))
			Expect(result.Source).To(Equal("cdn:" + working.URL))
			Expect(result.LatencyMS).To(BeNumerically(">=", 0))
		})

		It("returns nil without any network call when every source is unhealthy", func() {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
			}))
			defer srv.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindCDN, Endpoint: srv.URL, Priority: 1},
			)

			Expect(d.Fetch(context.Background(), "/x", "")).To(BeNil())
			Expect(atomic.LoadInt32(&calls)).To(BeZero())
		})

		It("returns nil when the registry is empty", func() {
			d := newDispatcher()
			Expect(d.Fetch(context.Background(), "/x", "")).To(BeNil())
		})

		It("skips gateway sources without a CID and makes no network call", func() {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
			}))
			defer srv.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindGateway, Endpoint: srv.URL, Priority: 1, Healthy: true},
			)

			Expect(d.Fetch(context.Background(), "/x", "")).To(BeNil())
			Expect(atomic.LoadInt32(&calls)).To(BeZero())
		})

		It("stops at the first success and never reaches later sources", func() {
			first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("first"))
			}))
			defer first.Close()

			var calls int32
			second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
			}))
			defer second.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindCDN, Endpoint: first.URL, Priority: 1, Healthy: true},
				source.ContentSource{Kind: source.KindCDN, Endpoint: second.URL, Priority: 2, Healthy: true},
			)

			result := d.Fetch(context.Background(), "/x", "")
			Expect(result).NotTo(BeNil())
			Expect(string(result.Body)).To(Equal("first"))
			Expect(atomic.LoadInt32(&calls)).To(BeZero())
		})

		It("sends Accept: */* and hits the resolved path", func() {
			var gotAccept, gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAccept = r.Header.Get("Accept")
				gotPath = r.URL.Path
			}))
			defer srv.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindDurableStorage, Endpoint: srv.URL, Priority: 1, Healthy: true},
			)

			result := d.Fetch(context.Background(), "/docs/a.txt", "")
			Expect(result).NotTo(BeNil())
			Expect(gotAccept).To(Equal("*/*"))
			Expect(gotPath).To(Equal("/storage/docs/a.txt"))
		})

		It("passes response headers through and applies defaults", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte("<html/>"))
			}))
			defer srv.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindOrigin, Endpoint: srv.URL, Priority: 1, Healthy: true},
			)

			result := d.Fetch(context.Background(), "/index.html", "")
			Expect(result).NotTo(BeNil())
			Expect(result.ContentType).To(Equal("text/html"))
			Expect(result.CacheControl).To(Equal("public, max-age=3600"))
		})

		It("keeps a provided Cache-Control header", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Cache-Control", "no-store")
				w.Write([]byte("x"))
			}))
			defer srv.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindOrigin, Endpoint: srv.URL, Priority: 1, Healthy: true},
			)

			result := d.Fetch(context.Background(), "/x", "")
			Expect(result).NotTo(BeNil())
			Expect(result.CacheControl).To(Equal("no-store"))
		})

		It("survives a connection error and keeps going", func() {
			dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			dead.Close() // connection refused from here on

			alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("alive"))
			}))
			defer alive.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindCDN, Endpoint: dead.URL, Priority: 1, Healthy: true},
				source.ContentSource{Kind: source.KindCDN, Endpoint: alive.URL, Priority: 2, Healthy: true},
			)

			result := d.Fetch(context.Background(), "/x", "")
			Expect(result).NotTo(BeNil())
			Expect(string(result.Body)).To(Equal("alive"))
		})

		It("requests gateway content under /ipfs/<cid>", func() {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte("cid content"))
			}))
			defer srv.Close()

			d := newDispatcher(
				source.ContentSource{Kind: source.KindGateway, Endpoint: srv.URL, Priority: 1, Healthy: true},
			)

			result := d.Fetch(context.Background(), "/readme.md", "ipfs://QmAbc")
			Expect(result).NotTo(BeNil())
			Expect(gotPath).To(Equal("/ipfs/QmAbc/readme.md"))
			Expect(result.Source).To(Equal("content-addressed-gateway:" + srv.URL))
		})
	})
})
