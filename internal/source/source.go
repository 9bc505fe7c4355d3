package source

// Kind identifies what protocol shape a content source speaks. The four
// kinds below are the complete set; the resolver switches over all of them
// and a new kind must be given an arm there before it can be routed to.
type Kind string

const (
	// KindGateway is a content-addressed storage gateway. Requests need a
	// content identifier and are served under /ipfs/<cid>.
	KindGateway Kind = "content-addressed-gateway"

	// KindCDN is an edge cache that mirrors content under its own root.
	KindCDN Kind = "cdn"

	// KindOrigin is a plain origin server.
	KindOrigin Kind = "origin"

	// KindDurableStorage is durable object storage exposed under /storage.
	KindDurableStorage Kind = "durable-storage"
)

// Kinds lists every valid source kind, in no particular order.
func Kinds() []Kind {
	return []Kind{KindGateway, KindCDN, KindOrigin, KindDurableStorage}
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindGateway, KindCDN, KindOrigin, KindDurableStorage:
		return true
	}
	return false
}

// ContentSource describes one backend able to serve content. Endpoint is
// the identity key: RemoveSource matches on it exactly, and two descriptors
// with the same endpoint are considered the same source.
//
// Healthy, LatencyMS and Probed are owned by the health monitor; nothing
// else writes them. A source that has never been probed has Probed=false
// and Healthy=false, which keeps it out of dispatch until the first probe
// resolves it.
type ContentSource struct {
	Kind      Kind    `json:"kind"`
	Endpoint  string  `json:"endpoint"`
	Priority  int     `json:"priority"`
	Region    string  `json:"region,omitempty"`
	Healthy   bool    `json:"healthy"`
	LatencyMS float64 `json:"latency_ms"`
	Probed    bool    `json:"probed"`
}

// Label returns the "<kind>:<endpoint>" form used in fetch results, logs
// and metric labels.
func (s ContentSource) Label() string {
	return string(s.Kind) + ":" + s.Endpoint
}
