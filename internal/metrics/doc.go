// Package metrics provides Prometheus metrics for the content router.
//
// It uses a channel-based event pipeline so that the probe and fetch paths
// never block on metric bookkeeping: components emit events into a buffered
// channel with non-blocking semantics, and a dedicated collector goroutine
// applies them to the registered Prometheus vectors.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.EventChannel() <- metrics.Event{
//		Type:     metrics.EventProbeCompleted,
//		Source:   "cdn:https://edge.example.com",
//		Healthy:  true,
//		Duration: 42 * time.Millisecond,
//	}
//
// The vectors are registered once via promauto on the default registry and
// exposed through the promhttp handler returned by Handler.
package metrics
