package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP rewrites RemoteAddr from X-Real-IP or X-Forwarded-For, but
// only when the connection itself comes from a trusted proxy prefix.
// Harmonization jobs are rate limited per client IP, so honoring these
// headers from arbitrary peers would let a caller dodge the limiter (and
// pollute the request logs) with a forged header. With no trusted proxies
// configured, headers are ignored entirely.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parseTrustedPrefixes(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peer, ok := peerAddr(r.RemoteAddr); ok && prefixesContain(trusted, peer) {
				if client, ok := advertisedClient(r.Header); ok {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseTrustedPrefixes converts the configured CIDR strings into prefixes.
// Bare IPs become single-host prefixes; unparseable entries are skipped with
// a warning rather than silently widening trust.
func parseTrustedPrefixes(cidrs []string) []netip.Prefix {
	var out []netip.Prefix
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(raw); err == nil {
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		slog.Warn("realip: ignoring invalid trusted proxy entry", "cidr", raw)
	}
	return out
}

// peerAddr extracts the connection source address from RemoteAddr, which is
// normally host:port but can be a bare address in tests.
func peerAddr(remote string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr(), true
	}
	if addr, err := netip.ParseAddr(remote); err == nil {
		return addr, true
	}
	return netip.Addr{}, false
}

// advertisedClient picks the client address the proxy advertises: X-Real-IP
// wins, otherwise the first hop of the X-Forwarded-For chain. A header that
// is present but not a valid address is rejected, never partially honored.
func advertisedClient(h http.Header) (netip.Addr, bool) {
	if rip := strings.TrimSpace(h.Get("X-Real-IP")); rip != "" {
		addr, err := netip.ParseAddr(rip)
		return addr, err == nil
	}

	xff := h.Get("X-Forwarded-For")
	if xff == "" {
		return netip.Addr{}, false
	}
	first := xff
	if i := strings.IndexByte(xff, ','); i > 0 {
		first = xff[:i]
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	return addr, err == nil
}

// prefixesContain reports whether addr falls inside any trusted prefix.
func prefixesContain(trusted []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
