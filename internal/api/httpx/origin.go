package httpx

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ctxKey int

const (
	ctxKeyTrustedPeer ctxKey = iota
	ctxKeyBasePath
)

// WithTrustedPeer marks the request as relayed by a known proxy, which
// makes its X-Forwarded-* headers authoritative.
func WithTrustedPeer(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyTrustedPeer, true)
}

func fromTrustedPeer(r *http.Request) bool {
	ok, _ := r.Context().Value(ctxKeyTrustedPeer).(bool)
	return ok
}

// WithBasePath records the prefix that was stripped before routing.
func WithBasePath(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, ctxKeyBasePath, prefix)
}

// BasePath returns the stripped mount prefix, or "".
func BasePath(r *http.Request) string {
	p, _ := r.Context().Value(ctxKeyBasePath).(string)
	return p
}

// ClientIP is the peer address, or the first X-Forwarded-For hop
// (then X-Real-IP) when the peer is a trusted proxy.
func ClientIP(r *http.Request) string {
	if fromTrustedPeer(r) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
			return xrip
		}
	}
	return PeerIP(r)
}

// PeerIP is the host part of RemoteAddr.
func PeerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
