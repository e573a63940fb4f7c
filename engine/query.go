package engine

import (
	"context"
	"net"
	"time"
)

// Query is one outstanding dialog with one server for one Lookup. It owns its socket, receive
// buffer, and XFR progress counters. See SPEC_FULL.md §3.
type Query struct {
	Lookup     *Lookup // Back-reference, non-owning
	ServerName string  // Borrowed from the Lookup's Server
	srv        *Server // The Server this Query was allocated for, for bestserver.Result reporting
	Addr       string  // Resolved destination, host:port

	conn           net.Conn
	waitingConnect bool
	recvMade       bool
	sockOpened     bool               // True once socktracker has recorded this Query's socket as Opened
	cancel         context.CancelFunc // Cancels the in-flight I/O goroutine, if any

	lengthPrefixBuf [2]byte // TCP length-prefix framing scratch

	// XFR bookkeeping - see xfr.go for the state machine these drive.
	firstSOARcvd    bool
	firstRRSerial   uint32
	secondRRRcvd    bool
	secondRRSerial  uint32
	firstRepeatRcvd bool
	firstPass       bool
	inAXFR          bool
	inIXFR          bool
	xfrDone         bool

	RRCount int // Cumulative RR count, for the transfer cap

	TimeSent time.Time // Monotonic timestamp of the last send, for RTT reporting

	cleared bool // clearQuery is idempotent; this guards against double-counting
}

// successor returns the next Query in the Lookup's list after this one, or nil if this is the
// last. Used by the timer policy (§4.4) to decide rotate-vs-retry-vs-give-up.
func (q *Query) successor() *Query {
	for i, sib := range q.Lookup.Queries {
		if sib == q {
			if i+1 < len(q.Lookup.Queries) {
				return q.Lookup.Queries[i+1]
			}
			return nil
		}
	}
	return nil
}

// isTCP reports whether this query's connection (if any) is a TCP connection. Queries don't carry
// their own transport flag separately from Lookup.TCPMode because every Query in a Lookup shares
// the same transport once setupLookup has run.
func (q *Query) isTCP() bool {
	return q.Lookup.TCPMode
}
