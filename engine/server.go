package engine

import "net"

// Server is an opaque handle carrying a textual server identifier - a hostname or a presentation
// form IP address, optionally with a ":port" suffix. Servers are created by configuration and
// cloned per Lookup; a Server is owned by the Lookup that references it.
type Server struct {
	Name string // As configured - hostname or address, e.g. "8.8.8.8" or "ns1.example.net:53"
}

// bsServer adapts *Server to the bestserver.Server interface (which requires a Name() method,
// already taken on Server by the exported field of the same name) so a Lookup's server list can be
// handed to bestserver.NewTraditional to drive the res_send(3)-style "use until it fails, then
// advance" rotation policy described by the timer policy in timer.go.
type bsServer struct{ s *Server }

func (b bsServer) Name() string { return b.s.Name }

// cloneServers makes an independent copy of a server list so that a follow-up Lookup (NS chase,
// search-list advance) can mutate its own list without disturbing the
// originating Lookup, which may still be mid-cleanup.
func cloneServers(in []*Server) []*Server {
	out := make([]*Server, len(in))
	for i, s := range in {
		clone := *s
		out[i] = &clone
	}
	return out
}

// ServersFromNames constructs a Server list from a plain list of names/addresses, in order.
func ServersFromNames(names []string) []*Server {
	out := make([]*Server, 0, len(names))
	for _, n := range names {
		out = append(out, &Server{Name: n})
	}
	return out
}

// splitServerName separates a configured server name into the bare host that addrResolveFunc
// should resolve and the port to dial, defaulting to consts.DNSDefaultPort when name carries none
// (the overwhelmingly common case - resolv.conf and "-ns" entries are almost always bare
// addresses).
func splitServerName(name string) (host, port string) {
	h, p, err := net.SplitHostPort(name)
	if err != nil {
		return name, consts.DNSDefaultPort
	}
	return h, p
}
