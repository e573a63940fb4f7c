package engine

import "time"

// lookupTimer is a one-shot, resettable, cancellable timer driven by whichever Query is currently
// active on a Lookup. Firing posts an evTimerFired event for the Lookup onto the engine's event
// channel rather than calling back directly, so all state transitions still happen on the one
// goroutine running Engine.Run.
type lookupTimer struct {
	t      *time.Timer
	lookup *Lookup
	gen    int // Incremented on every (re)arm; a fired timer checks its gen is still current
}

// armTimer (re)starts the Lookup's timer for the given duration. Any previously armed timer is
// stopped first. Firing sends to eng.events; the engine drains this channel from Run's loop.
func (eng *Engine) armTimer(l *Lookup, d time.Duration) {
	if l.Timer != nil && l.Timer.t != nil {
		l.Timer.t.Stop()
	}
	if l.Timer == nil {
		l.Timer = &lookupTimer{lookup: l}
	}
	l.Timer.gen++
	gen := l.Timer.gen
	lt := l.Timer
	lt.t = time.AfterFunc(d, func() {
		eng.post(event{kind: evTimerFired, lookup: l, gen: gen})
	})
}

// disarmTimer cancels a Lookup's timer, if any, so it cannot fire after the Lookup is reclaimed.
func (eng *Engine) disarmTimer(l *Lookup) {
	if l.Timer != nil && l.Timer.t != nil {
		l.Timer.t.Stop()
	}
}

// transferTimeout returns the timeout that should apply given the current query's position in its
// Lookup's server list and whether a zone transfer is in progress (§4.4: a 4x multiplier, capped,
// applies while a transfer streams).
func (eng *Engine) transferTimeout(l *Lookup, hasSuccessor bool) time.Duration {
	var base time.Duration
	switch {
	case l.Timeout > 0:
		base = l.Timeout
	case hasSuccessor:
		base = consts.ServerTimeout
	case l.TCPMode:
		base = consts.TCPTimeout
	default:
		base = consts.UDPTimeout
	}

	if l.XfrQuery != nil {
		base *= consts.XFRTimeoutMultiplier
		if base > consts.XFRTimeoutCap {
			base = consts.XFRTimeoutCap
		}
	}

	return base
}
