package handler

// Resolution is what a decentralized name resolves to: the base path to
// request and, when the content is content-addressed, its identifier. The
// content hash may carry an ipfs:// scheme prefix; the engine strips it
// itself.
type Resolution struct {
	Path        string
	ContentHash string
}

// NameResolver turns a human-readable name into the pair the engine's
// Fetch expects. Resolution is an upstream concern (on-chain lookup, DNS,
// whatever the deployment uses); the gateway only consumes the interface.
type NameResolver interface {
	ResolveName(name string) (Resolution, bool)
}

// StaticNameResolver resolves names from a fixed table, typically loaded
// from configuration. Useful for tests and small deployments.
type StaticNameResolver struct {
	entries map[string]Resolution
}

func NewStaticNameResolver(entries map[string]Resolution) *StaticNameResolver {
	if entries == nil {
		entries = make(map[string]Resolution)
	}
	return &StaticNameResolver{entries: entries}
}

func (r *StaticNameResolver) ResolveName(name string) (Resolution, bool) {
	res, ok := r.entries[name]
	return res, ok
}
