package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// FromRequest resolves the originating client IP. Proxy headers are consulted
// before the socket address so rate limiting keys on the real client behind a
// load balancer.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for ip := range strings.SplitSeq(forwarded, ",") {
			if parsed := parse(ip); parsed != "" {
				return parsed
			}
		}
	}

	if ip := parse(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parse(r.RemoteAddr)
	}
	return parse(host)
}

// parse validates and normalizes an IP string, returning "" when invalid.
func parse(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.String()
}
