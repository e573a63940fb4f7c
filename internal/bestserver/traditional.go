package bestserver

import (
	"time"
)

// TraditionalConfig is the parameter set for NewTraditional. It's currently empty - digq's
// "-best-server-algorithm=traditional" path (the default) needs no tuning knobs - but it's kept as
// a struct rather than dropped so newBestServerManager's call shape stays symmetric with
// NewLatency, and so a future knob doesn't have to change either function's signature.
type TraditionalConfig struct {
}

// traditional is the res_send(3)-style rotation policy: engine/lifecycle.go's queryTimedOut and
// engine/response.go's success path call Result() after each Query; a failure on the current best
// server advances to the next one in the Lookup's server list, wrapping around.
type traditional struct {
	TraditionalConfig
	baseManager
}

func NewTraditional(config TraditionalConfig, servers []Server) (*traditional, error) {
	t := &traditional{TraditionalConfig: config}
	err := t.baseManager.init(TraditionalAlgorithm, servers)
	if err != nil {
		return nil, err
	}

	return t, err
}

// Result advances bestIndex to the next server only when the *current* best server just failed -
// exactly the "use until it fails, then advance" policy spec.md §8 scenario 2 is written against.
// A report against any other server updates nothing but still returns true, since engine code may
// legitimately report on a server it tried before rotation moved bestIndex elsewhere.
func (t *traditional) Result(server Server, success bool, now time.Time, latency time.Duration) bool {
	t.lock()
	defer t.unlock()

	ix, found := t.serverToIndex[server]
	if !found {
		return false
	}

	if success {
		return true
	}

	if ix == t.bestIndex { // If 'best' failed, move to next server.
		t.bestIndex = (t.bestIndex + 1) % t.serverCount
	}

	return true
}
