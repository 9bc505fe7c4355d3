// Package dispatch implements ordered failover across content sources.
// A fetch walks the registry's healthy sources in rank order and returns
// the first successful response; exhausting every source yields a nil
// result, which is an expected outcome rather than an error.
package dispatch
