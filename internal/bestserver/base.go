package bestserver

import (
	"errors"
	"sync"
)

type algorithm string

const (
	LatencyAlgorithm     algorithm = "latency"     // Adaptive: favour whichever server answers fastest
	TraditionalAlgorithm           = "traditional" // res_send(3)-style: use until it fails, then advance
)

// baseManager implements most of the Manager interface that engine/setup.go's newBestServerManager
// selects between; both traditional and latency compose with it rather than reimplementing
// Algorithm/Best/Servers/Len themselves. One baseManager backs exactly one Lookup's server list -
// engine/setup.go constructs a fresh Manager per Lookup, never shares one across Lookups.
type baseManager struct {
	algType       algorithm    // Set by init
	mu            sync.RWMutex // Protects everything below here as well as implementation-specific state
	servers       []Server
	serverCount   int            // Cache of len(servers)
	serverToIndex map[Server]int // Converts the Server a Query completed against back to its list index
	bestIndex     int            // Index of the server Best() currently returns
}

// lock is a wrapper to encapsulate locking on behalf of all bestserver
// implementations. Implementations must call lock|rlock/unlock to protect their
// data structures from concurrent access.
func (t *baseManager) lock() {
	t.mu.Lock()
}

// unlock is a wrapper to encapsulate locking on behalf of all implementations.
func (t *baseManager) unlock() {
	t.mu.Unlock()
}

// rlock is a wrapper to encapsulate locking on behalf of all implementations.
func (t *baseManager) rlock() {
	t.mu.RLock()
}

// runlock is a wrapper to encapsulate locking on behalf of all implementations.
func (t *baseManager) runlock() {
	t.mu.RUnlock()
}

// init is called by NewTraditional/NewLatency to populate the server list a Lookup was seeded or
// follow-up-generated with.
func (t *baseManager) init(algType algorithm, servers []Server) error {
	if len(servers) == 0 {
		return errors.New("bestserver: no servers in list")
	}
	t.algType = algType
	t.servers = servers
	t.serverCount = len(t.servers)

	t.serverToIndex = make(map[Server]int)
	for ix, s := range t.servers {
		if _, ok := t.serverToIndex[s]; ok {
			return errors.New("bestserver: duplicate server in list: " + s.Name())
		}
		t.serverToIndex[s] = ix
	}

	return nil
}

func (t *baseManager) Algorithm() string {
	return string(t.algType)
}

func (t *baseManager) Best() (Server, int) {
	t.rlock()
	defer t.runlock()

	return t.servers[t.bestIndex], t.bestIndex
}

func (t *baseManager) Servers() []Server {
	servers := make([]Server, len(t.servers))
	copy(servers, t.servers)

	return servers
}

func (t *baseManager) Len() int {
	return len(t.servers)
}
