// Package source defines content source descriptors and the registry that
// holds them. The registry keeps sources ranked so that the dispatcher can
// try the most attractive backend first: healthy before unhealthy, then by
// configured priority, then by last measured latency.
package source
