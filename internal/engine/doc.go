// Package engine composes the source registry, health monitor and fetch
// dispatcher into the routing engine an embedding gateway talks to.
package engine
