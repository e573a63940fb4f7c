package engine

import (
	"time"

	"github.com/markdingo/digq/internal/socktracker"
)

// handleEvent is the sole point at which Engine state is mutated in response to I/O completion. It
// runs exclusively on the goroutine executing Run, so every case below can touch Lookup/Query
// fields directly without locking (§5).
func (eng *Engine) handleEvent(ev event) {
	l := ev.lookup
	q := ev.query

	switch ev.kind {
	case evTimerFired:
		if l == nil || l.Timer == nil || ev.gen != l.Timer.gen {
			return // Superseded by a rearm/disarm; this firing no longer means anything
		}
		eng.queryTimedOut(l, l.CurrentQuery)

	case evResolveDone:
		eng.counters.send.Done()
		if q == nil || q.cleared {
			return
		}
		if ev.err != nil {
			eng.queryTimedOut(l, q) // Treat an unresolvable name like any other server failure
			return
		}
		q.Addr = ev.addr
		eng.launchQuery(l, q)

	case evUDPSent:
		eng.counters.send.Done()
		if q == nil || q.cleared {
			return
		}
		if ev.conn != nil {
			q.conn = ev.conn
		}
		if ev.err != nil {
			eng.queryTimedOut(l, q)
			return
		}
		eng.counters.socks.State(q.Addr, time.Now(), socktracker.Opened)
		eng.counters.socks.ExchangeStart(q.Addr)
		q.sockOpened = true
		q.TimeSent = time.Now()
		eng.startUDPRecv(l, q)

	case evUDPRecv:
		eng.counters.recv.Done()
		if q == nil || q.cleared {
			return
		}
		if ev.err != nil {
			eng.queryTimedOut(l, q)
			return
		}
		eng.handleResponse(l, q, ev.data)

	case evTCPConnected:
		eng.counters.sock.Done()
		if q == nil || q.cleared {
			return
		}
		if ev.conn != nil {
			q.conn = ev.conn
		}
		if ev.err != nil {
			eng.queryTimedOut(l, q)
			return
		}
		eng.counters.socks.State(q.Addr, time.Now(), socktracker.Opened)
		eng.counters.socks.ExchangeStart(q.Addr)
		q.sockOpened = true
		eng.writeTCPQuery(l, q)

	case evTCPWritten:
		eng.counters.send.Done()
		if q == nil || q.cleared {
			return
		}
		if ev.err != nil {
			eng.queryTimedOut(l, q)
			return
		}
		q.TimeSent = time.Now()
		eng.readNextTCPMessage(q)

	case evTCPLenRead:
		eng.counters.recv.Done()
		if q == nil || q.cleared {
			return
		}
		if ev.err != nil {
			eng.queryTimedOut(l, q)
			return
		}
		eng.readTCPBody(l, q, ev.length)

	case evTCPBodyRead:
		eng.counters.recv.Done()
		if q == nil || q.cleared {
			return
		}
		if ev.err != nil {
			eng.queryTimedOut(l, q)
			return
		}
		eng.handleResponse(l, q, ev.data)

	case evCancelDone:
		// Acknowledgement only; clearQuery has already run by the time cancellation is requested.
	}
}
