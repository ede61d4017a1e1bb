package middlewares

import (
	"net/http"
	"net/netip"
	"slices"

	"github.com/5w1tchy/book-explorer-api/internal/api/httpx"
)

// TrustedProxies lets X-Forwarded-* headers through to ClientIP and
// AbsoluteURL only when the direct peer is inside one of the prefixes.
// With no prefixes every request is keyed on its RemoteAddr.
func TrustedProxies(prefixes []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(prefixes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, err := netip.ParseAddr(httpx.PeerIP(r))
			if err == nil {
				addr = addr.Unmap()
				if slices.ContainsFunc(prefixes, func(p netip.Prefix) bool { return p.Contains(addr) }) {
					r = r.WithContext(httpx.WithTrustedPeer(r.Context()))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
