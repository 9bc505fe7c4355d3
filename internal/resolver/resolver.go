package resolver

import (
	"strings"

	"github.com/angeloszaimis/content-router/internal/source"
)

// CIDScheme is the URI scheme prefix stripped from content identifiers
// before they are placed in a gateway path.
const CIDScheme = "ipfs://"

// URL builds the request URL for one source. The second return value
// reports whether a URL could be built at all: a content-addressed gateway
// cannot serve a request that carries no content identifier, and the caller
// must skip such a source without attempting any network call.
//
// The switch below is the complete mapping over source kinds. A kind
// without an arm resolves to nothing, so adding a kind in package source
// without extending this switch makes that kind unroutable.
func URL(s source.ContentSource, path, contentHash string) (string, bool) {
	switch s.Kind {
	case source.KindGateway:
		if contentHash == "" {
			return "", false
		}
		cid := strings.TrimPrefix(contentHash, CIDScheme)
		return s.Endpoint + "/ipfs/" + cid + path, true

	case source.KindCDN, source.KindOrigin:
		return s.Endpoint + path, true

	case source.KindDurableStorage:
		return s.Endpoint + "/storage" + path, true

	default:
		return "", false
	}
}
