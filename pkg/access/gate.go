// Package access decides whether a dashboard view may offer write controls.
//
// Writes are only offered when the dashboard is reached through a local
// development host. The decision is made once, when a view is established,
// and is not revisited if the host identity changes later in the same session.
package access

import (
	"net"
	"net/url"
	"strings"
)

// DefaultDevHosts are the loopback identities recognised out of the box
var DefaultDevHosts = []string{"localhost", "127.0.0.1", "::1"}

// Gate holds the allow-set of development hostnames
type Gate struct {
	hosts map[string]struct{}
}

// NewGate builds a gate over hosts. An empty list means DefaultDevHosts.
func NewGate(hosts []string) *Gate {
	if len(hosts) == 0 {
		hosts = DefaultDevHosts
	}
	g := &Gate{hosts: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		if h = Hostname(h); h != "" {
			g.hosts[h] = struct{}{}
		}
	}
	return g
}

// Allows reports whether identity names one of the gate's hosts. identity may
// be a URL, a host:port pair or a bare hostname.
func (g *Gate) Allows(identity string) bool {
	host := Hostname(identity)
	if host == "" {
		return false
	}
	_, ok := g.hosts[host]
	return ok
}

// Hostname reduces identity to a lowercase hostname without port or brackets
func Hostname(identity string) string {
	s := strings.TrimSpace(identity)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		return strings.ToLower(u.Hostname())
	}

	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	return strings.ToLower(s)
}
