package source

import (
	"sort"
	"sync"
)

// Registry is the authoritative, mutable list of content sources.
//
// Two orderings exist on purpose. Construction and AddSource sort by
// priority alone, because health and latency are unknown until the monitor
// has probed. The monitor's Rank applies the full composite key (healthy
// desc, priority asc, latency asc). A source added between probe cycles is
// therefore ranked only among its priority peers until the next cycle.
type Registry struct {
	mutex   sync.RWMutex
	sources []ContentSource
}

// NewRegistry creates a registry holding a copy of initial, sorted by
// priority ascending.
func NewRegistry(initial []ContentSource) *Registry {
	r := &Registry{
		sources: make([]ContentSource, len(initial)),
	}
	copy(r.sources, initial)
	sortByPriority(r.sources)
	return r
}

// AddSource appends a source and re-sorts by priority ascending only.
func (r *Registry) AddSource(s ContentSource) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.sources = append(r.sources, s)
	sortByPriority(r.sources)
}

// RemoveSource removes every source whose endpoint exactly equals endpoint.
// Removing an unknown endpoint is a no-op.
func (r *Registry) RemoveSource(endpoint string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	kept := r.sources[:0]
	for _, s := range r.sources {
		if s.Endpoint != endpoint {
			kept = append(kept, s)
		}
	}
	r.sources = kept
}

// Snapshot returns an independent copy of the current list in its current
// order. Mutating the returned slice never affects the registry.
func (r *Registry) Snapshot() []ContentSource {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]ContentSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// SetHealth records a probe outcome for the source with the given endpoint.
// Returns whether the healthy bit flipped, so callers can log transitions
// rather than every probe.
func (r *Registry) SetHealth(endpoint string, healthy bool, latencyMS float64) (changed bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i := range r.sources {
		if r.sources[i].Endpoint != endpoint {
			continue
		}
		if r.sources[i].Healthy != healthy {
			changed = true
		}
		r.sources[i].Healthy = healthy
		r.sources[i].LatencyMS = latencyMS
		r.sources[i].Probed = true
	}
	return changed
}

// Rank re-sorts the list by the full composite key: healthy descending,
// priority ascending, latency ascending. Called by the health monitor once
// per probe cycle, after all probes have settled.
func (r *Registry) Rank() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	sort.SliceStable(r.sources, func(i, j int) bool {
		a, b := r.sources[i], r.sources[j]
		if a.Healthy != b.Healthy {
			return a.Healthy
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.LatencyMS < b.LatencyMS
	})
}

// sortByPriority sorts in place by priority ascending. Stable, so sources
// with equal priority keep their insertion order.
func sortByPriority(sources []ContentSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority < sources[j].Priority
	})
}
