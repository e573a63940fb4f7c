/*
Package socktracker tracks per-server-address socket occupancy and concurrency for the engine's
UDP/TCP query transport. It is adapted from a connection tracker originally built for inbound
HTTP2 sessions; here the "connection" is the socket a Query opens to one configured name server and
the "session" is the one query/response exchange (or, for a zone transfer, the run of exchanges) that
socket carries.

socktracker presents a reporter.Reporter interface so its output can be periodically logged
alongside the engine's other reporters.

Typical usage is one Tracker per Engine:

	trk := socktracker.New("servers")
	trk.State(server, time.Now(), socktracker.Opened)
	... send, then receive ...
	trk.State(server, time.Now(), socktracker.Closed)

If a single socket carries more than one exchange, as a zone transfer does, bracket each exchange
with ExchangeStart/ExchangeDone so peak concurrency per-socket is also captured.
*/
package socktracker

import (
	"sync"
	"time"
)

// State is a socket lifecycle transition, analogous to net/http.ConnState but scoped to the
// engine's own UDP/TCP query sockets rather than an inbound HTTP server's connections.
type State int

const (
	Opened State = iota // A new socket was created (UDP bind, or TCP dial initiated)
	Active              // A send or receive is in flight on the socket
	Idle                // The socket exists but has no I/O in flight
	Closed              // The socket was released back to the engine
)

type socketStats struct {
	connStart       time.Time
	activeStart     time.Time
	activeFor       time.Duration
	currentExchanges int
	peakExchanges    int
}

type socket struct {
	socketStats
}

func (s *socket) resetCounters() {}

type errIx int

const (
	errNoSockInMap        errIx = iota // State change for an address with no open socket
	errNoSockForExchange               // ExchangeStart/Done for an address with no open socket
	errDanglingSocket                  // Opened when already open
	errNegativeConcurrency             // More ExchangeDone than ExchangeStart
	errSocketsLost                     // Closed with exchanges still outstanding
	errUnknownState
	errArSize
)

type trackerStats struct {
	peakSockets    int
	peakExchanges  int
	openFor        time.Duration
	activeFor      time.Duration
	errors         [errArSize]int
}

// Tracker tracks concurrency and occupancy across all sockets the engine currently has open,
// keyed by server address (the same string used as Query.Addr).
type Tracker struct {
	name string
	mu   sync.Mutex

	sockMap map[string]*socket
	trackerStats
}

// New constructs a Tracker.
func New(name string) *Tracker {
	t := &Tracker{name: name}
	t.sockMap = make(map[string]*socket)
	return t
}

// State records a socket lifecycle transition for the given server address. It returns false if
// the transition doesn't make sense given the tracker's current view (e.g. Active without a prior
// Opened); the tracker reconciles in favour of the new state regardless so it never wedges.
func (t *Tracker) State(addr string, now time.Time, state State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sockMap[addr]
	if state == Opened {
		s := &socket{}
		s.connStart = now
		t.sockMap[addr] = s
		if ok {
			t.errors[errDanglingSocket]++
		}
		if cc := len(t.sockMap); cc > t.peakSockets {
			t.peakSockets = cc
		}
		return !ok
	}

	if !ok {
		t.errors[errNoSockInMap]++
		return false
	}

	switch state {
	case Active:
		s.activeStart = now
		return true

	case Idle:
		if !s.activeStart.IsZero() {
			s.activeFor += now.Sub(s.activeStart)
			s.activeStart = time.Time{}
		}
		return true

	case Closed:
		t.openFor += now.Sub(s.connStart)
		if !s.activeStart.IsZero() {
			s.activeFor += now.Sub(s.activeStart)
		}
		t.activeFor += s.activeFor
		delete(t.sockMap, addr)
		if s.currentExchanges > 0 {
			t.errors[errSocketsLost]++
			return false
		}
		if s.peakExchanges > t.peakExchanges {
			t.peakExchanges = s.peakExchanges
		}
		return true
	}

	t.errors[errUnknownState]++
	return false
}

// ExchangeStart increments the exchange counter for a socket, used by zone transfers that carry
// multiple length-prefixed messages over one TCP connection.
func (t *Tracker) ExchangeStart(addr string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sockMap[addr]
	if !ok {
		t.errors[errNoSockForExchange]++
		return false
	}
	s.currentExchanges++
	if s.currentExchanges > s.peakExchanges {
		s.peakExchanges = s.currentExchanges
	}
	return true
}

// ExchangeDone undoes ExchangeStart.
func (t *Tracker) ExchangeDone(addr string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sockMap[addr]
	if !ok {
		t.errors[errNoSockForExchange]++
		return false
	}
	if s.currentExchanges <= 0 {
		t.errors[errNegativeConcurrency]++
		return false
	}
	s.currentExchanges--
	return true
}

// Open returns the current count of open sockets.
func (t *Tracker) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sockMap)
}
