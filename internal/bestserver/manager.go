package bestserver

import (
	"time"
)

// Server is the handle a Manager tracks statistics against. digq's only implementation is
// engine.bsServer, which adapts *engine.Server (a Lookup's configured server name) to this
// interface - Name() is already taken on engine.Server by its exported field of the same name,
// which is why the adapter type exists instead of engine.Server implementing this directly.
type Server interface {
	Name() string
}

// Manager is the rotation-policy interface engine/setup.go selects one implementation of per
// Lookup (see newBestServerManager), and engine/lifecycle.go and engine/response.go drive as each
// Query resolves or times out.
type Manager interface {
	// Algorithm returns the name of the implementation: "traditional" or "latency", matching the
	// values digq's "-best-server-algorithm" flag accepts.
	Algorithm() string

	// Best returns the current best server (and its index into the Lookup's Servers list) as
	// determined by the underlying algorithm. It always returns valid values. The returned index
	// indexes the server list as originally supplied when this Manager was constructed.
	Best() (Server, int)

	// Result updates internal statistics for one Query's outcome and *may* reassess which server is
	// now 'best'.
	//
	// The Server passed into Result() must be exactly the value engine/lifecycle.go associated with
	// the Query that just completed (q.srv, wrapped as bsServer) - it's used as a map key. Result()
	// requires it to be supplied explicitly rather than relying on the current 'best' server, since
	// that may have changed between the Query's dispatch and its completion.
	//
	// Returns false if server is not part of this Manager's list.
	Result(server Server, success bool, now time.Time, latency time.Duration) bool

	// Servers returns a slice of all Servers in the order originally supplied.
	Servers() []Server

	// Len returns the count of servers.
	Len() int
}
