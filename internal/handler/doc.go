// Package handler implements the gateway's HTTP surface. It translates an
// inbound request into the (path, contentHash) pair the routing engine
// expects, invokes a fetch, and maps the outcome to an HTTP response.
package handler
