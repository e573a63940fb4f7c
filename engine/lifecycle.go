package engine

import (
	"context"
	"net"
	"time"

	"github.com/markdingo/digq/internal/socktracker"
)

// doLookup starts the first Query of a freshly set-up Lookup (§4.3). setupLookup has already
// populated l.Queries with one Query per server; this kicks off address resolution for the first
// one. A Lookup with zero servers (should not happen once setupLookup has run) clears immediately.
func (eng *Engine) doLookup(l *Lookup) {
	if len(l.Queries) == 0 {
		eng.tryClearLookup(l)
		return
	}
	l.CurrentQuery = l.Queries[0]
	eng.doQuery(l, l.CurrentQuery)
}

// doQuery resolves a Query's server name to an address, then hands off to the UDP or TCP
// transport. Resolution is the one operation SPEC_FULL.md §5 allows to block a helper goroutine
// directly, since net.Resolver has no event-driven mode.
func (eng *Engine) doQuery(l *Lookup, q *Query) {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	eng.counters.send.Add()
	host, port := splitServerName(q.ServerName)
	go func() {
		addr, err := eng.resolveAddr(ctx, host)
		if err == nil {
			addr = net.JoinHostPort(addr, port)
		}
		eng.post(event{kind: evResolveDone, lookup: l, query: q, addr: addr, err: err})
	}()
}

// launchQuery starts the transport proper once a Query's address is known.
func (eng *Engine) launchQuery(l *Lookup, q *Query) {
	eng.armTimer(l, eng.transferTimeout(l, q.successor() != nil))
	if l.TCPMode {
		eng.startTCPQuery(l, q)
	} else {
		eng.startUDPQuery(l, q)
	}
}

// queryTimedOut implements §4.4's retry/rotate/give-up decision: retry the same server while
// retries remain, otherwise hand off to the next server in the Lookup's list order, and fail the
// Lookup outright once every server has been tried.
func (eng *Engine) queryTimedOut(l *Lookup, q *Query) {
	if q == nil || q.cleared {
		return
	}
	eng.disarmTimer(l)
	q.conn = nil

	if l.bestServers != nil && q.srv != nil {
		l.bestServers.Result(bsServer{q.srv}, false, time.Now(), 0)
	}

	if l.Retries > 0 {
		l.Retries--
		eng.doQuery(l, q)
		return
	}

	next := q.successor()
	eng.clearQuery(l, q)
	if next == nil {
		err := fatalf("no servers reachable for %q", l.Textname)
		eng.result.ratchet(ExitNoServerReached, err)
		eng.cb.OnReceived(l, nil, err)
		eng.tryClearLookup(l)
		return
	}
	l.CurrentQuery = next
	// l.Retries is not replenished here: once the retry budget is spent on one server, every
	// later server in rotation gets exactly one attempt (spec.md §8 scenario 2's "two rotations
	// to servers 1 and 2"), not a fresh retry cycle each - otherwise total attempts would scale as
	// retries*numServers instead of retries+(numServers-1).
	eng.doQuery(l, next)
}

// cancelLookup abandons every outstanding Query of a Lookup without waiting for their natural
// conclusion (§4.8): it ends a Lookup once it has an answer or a fatal error, once a follow-up
// (search-list advance, NS chase) has replaced it, and at process-wide shutdown.
func (eng *Engine) cancelLookup(l *Lookup) {
	eng.disarmTimer(l)
	for _, q := range l.Queries {
		eng.clearQuery(l, q)
	}
	eng.tryClearLookup(l)
}

// clearQuery releases a Query's resources exactly once. It is safe to call on an already-cleared
// Query or on one that never got past resolution.
func (eng *Engine) clearQuery(l *Lookup, q *Query) {
	if q == nil || q.cleared {
		return
	}
	q.cleared = true
	if q.cancel != nil {
		q.cancel()
	}
	if q.conn != nil {
		q.conn.Close()
		q.conn = nil
	}
	if q.sockOpened {
		eng.counters.socks.ExchangeDone(q.Addr)
		eng.counters.socks.State(q.Addr, time.Now(), socktracker.Closed)
		q.sockOpened = false
	}
}

// tryClearLookup checks whether every Query belonging to l has been cleared and, if so, hands the
// Lookup back to the scheduler via its onDone callback (§4.1/§4.8).
func (eng *Engine) tryClearLookup(l *Lookup) {
	for _, q := range l.Queries {
		if !q.cleared {
			return
		}
	}
	eng.disarmTimer(l)
	if l.onDone != nil {
		l.onDone(l)
	}
}
