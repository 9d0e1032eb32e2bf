package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

// TrustedProxies rewrites the request's remote address from X-Forwarded-For,
// X-Real-IP or Forwarded, but only when the connecting peer is one of the
// given proxies. Entries are IPs or CIDR blocks; unparsable entries are
// skipped. With no entries the returned middleware passes requests through.
func TrustedProxies(entries []string) func(http.Handler) http.Handler {
	nets := parseProxies(entries)
	return func(next http.Handler) http.Handler {
		if len(nets) == 0 {
			return next
		}
		proxied := handlers.ProxyHeaders(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := net.ParseIP(clientIP(r)); ip != nil && containsIP(nets, ip) {
				proxied.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseProxies(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				continue
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		if _, n, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func containsIP(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
