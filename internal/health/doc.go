// Package health implements periodic health probing for content sources.
// Each probe cycle checks every registered source concurrently, records
// measured round-trip latency, and re-ranks the registry once all probes
// have settled.
package health
