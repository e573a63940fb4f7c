package engine

import (
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/digq/internal/socktracker"
)

// handleResponse implements §4.5: the gate sequence every inbound message passes through before it
// is either accepted as the Lookup's answer, escalated to TCP, or treated as a transport failure.
// raw is the wire-format message as read from the socket (UDP datagram or TCP length-framed body).
func (eng *Engine) handleResponse(l *Lookup, q *Query, raw []byte) {
	if q.cleared { // Cancellation gate: a cancelled query's own responses are simply discarded
		return
	}

	msg := new(dns.Msg)
	if err := msg.Unpack(raw); err != nil {
		if l.BestEffort { // Parse gate, best-effort mode: drop the message and leave the Query to its timer
			return
		}
		eng.failQuery(l, q, fatalf("malformed response from %s: %w", q.ServerName, err))
		return
	}

	if msg.Id != l.question.Id { // Not our query; a stray or spoofed packet. Keep waiting.
		return
	}

	if !q.isTCP() && msg.Truncated && !l.IgnoreTC { // Truncation gate
		eng.escalateToTCP(l, q)
		return
	}

	if msg.Rcode == dns.RcodeServerFailure && l.ServfailStops && q.successor() != nil {
		// SERVFAIL gate: skip straight to the next server instead of waiting out the timer.
		eng.clearQuery(l, q)
		eng.rotateToNext(l, q)
		return
	}

	if l.tsigState != nil { // TSIG gate: verify, but a failure only clears the validated flag (§7)
		l.tsigState.verify(l, raw)
	}

	l.MsgCounter++

	if l.Rdtype == dns.TypeAXFR || l.Rdtype == dns.TypeIXFR {
		eng.handleXFRMessage(l, q, msg)
		return
	}

	rtt := time.Since(q.TimeSent)
	if l.bestServers != nil && q.srv != nil {
		l.bestServers.Result(bsServer{q.srv}, true, time.Now(), rtt)
	}
	eng.cb.OnMessage(q, msg, rtt)
	eng.cb.OnReceived(l, msg, nil)
	eng.generateFollowups(l, msg)
	eng.cancelLookup(l) // The answer ends the Lookup; servers not yet tried are cleared unstarted
}

// handleXFRMessage drives one inbound message of a zone transfer through the consumer state
// machine in xfr.go, requesting the next length-prefixed message while the transfer continues.
func (eng *Engine) handleXFRMessage(l *Lookup, q *Query, msg *dns.Msg) {
	result, err := processXFRMessage(l, q, msg)
	if err != nil {
		eng.failQuery(l, q, err)
		return
	}
	eng.cb.OnMessage(q, msg, time.Since(q.TimeSent))

	switch result {
	case xfrContinue:
		eng.readNextTCPMessage(q)
	case xfrRRLimit:
		err := fatalf("zone transfer for %q exceeded the RR limit (%d)", l.Textname, l.rrLimit)
		eng.result.ratchet(ExitRRLimit, err)
		eng.cb.OnReceived(l, msg, err)
		eng.clearQuery(l, q)
		eng.tryClearLookup(l)
	case xfrFailed:
		eng.failQuery(l, q, fatalf("zone transfer for %q is malformed", l.Textname))
	case xfrDone:
		eng.cb.OnReceived(l, msg, nil)
		eng.clearQuery(l, q)
		eng.tryClearLookup(l)
	}
}

// escalateToTCP implements the TC->TCP escalation rule of §4.5: abandon the UDP attempt on this
// server and retry the same question over TCP, forcing TCPMode for the remainder of the Lookup's
// life so that a subsequent rotation doesn't fall back to UDP.
func (eng *Engine) escalateToTCP(l *Lookup, q *Query) {
	eng.disarmTimer(l)
	if q.conn != nil {
		q.conn.Close()
		q.conn = nil
	}
	if q.sockOpened {
		eng.counters.socks.ExchangeDone(q.Addr)
		eng.counters.socks.State(q.Addr, time.Now(), socktracker.Closed)
		q.sockOpened = false
	}
	l.TCPMode = true
	eng.armTimer(l, eng.transferTimeout(l, q.successor() != nil))
	eng.startTCPQuery(l, q)
}

// rotateToNext advances the lookup's current query to q's successor, the next server in the
// Lookup's list order, and starts it. If there is no successor, the lookup is out of servers to try.
func (eng *Engine) rotateToNext(l *Lookup, q *Query) {
	eng.disarmTimer(l)
	next := q.successor()
	if next == nil {
		eng.tryClearLookup(l)
		return
	}
	l.CurrentQuery = next
	eng.doQuery(l, next)
}

// failQuery records a fatal transport/parse error against the lookup's result and cancels the
// whole Lookup: every Query, including servers not yet tried, is cleared and no other server is
// tried.
func (eng *Engine) failQuery(l *Lookup, q *Query, err error) {
	eng.result.ratchet(ExitNoServerReached, err)
	eng.cb.OnReceived(l, nil, err)
	eng.cancelLookup(l)
}
