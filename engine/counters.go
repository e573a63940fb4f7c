package engine

import (
	"github.com/markdingo/digq/internal/concurrencytracker"
	"github.com/markdingo/digq/internal/socktracker"
)

// counters tracks the three non-negative invariants required by SPEC_FULL.md §8: sockcount,
// sendcount and recvcount never go negative, and shutdown only occurs once all three are zero.
// concurrencytracker.Counter already panics on an unmatched Done(), which is exactly the defensive
// property the invariant asks for, so it's reused directly rather than reinvented.
type counters struct {
	sock *concurrencytracker.Counter
	send *concurrencytracker.Counter
	recv *concurrencytracker.Counter

	socks *socktracker.Tracker // Per-server-address occupancy, for reporting
}

func newCounters() *counters {
	return &counters{
		sock:  &concurrencytracker.Counter{},
		send:  &concurrencytracker.Counter{},
		recv:  &concurrencytracker.Counter{},
		socks: socktracker.New("engine"),
	}
}

// idle reports whether all three counters have returned to zero - one of Run's three shutdown
// preconditions (the other two are an empty queue and a nil current lookup).
func (c *counters) idle() bool {
	return c.sock.Current() == 0 && c.send.Current() == 0 && c.recv.Current() == 0
}
