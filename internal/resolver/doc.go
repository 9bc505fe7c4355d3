// Package resolver maps a source kind plus a requested path (and optional
// content identifier) to the concrete URL to fetch. It performs no I/O.
package resolver
