package engine

import "net"

// eventKind enumerates the suspension points listed in SPEC_FULL.md §5: every place the engine
// yields to other goroutines and later resumes via a posted event.
type eventKind int

const (
	evResolveDone  eventKind = iota // Address resolution for a server name completed
	evUDPSent                      // The single UDP send for a Query completed (or failed)
	evUDPRecv                      // A UDP datagram arrived (or the receive failed)
	evTCPConnected                 // A TCP dial completed (or failed)
	evTCPWritten                   // The length-prefixed message write completed (or failed)
	evTCPLenRead                   // The 2-byte length prefix of the next message arrived
	evTCPBodyRead                  // The message body for a previously read length arrived
	evTimerFired                   // A Lookup's timer expired
	evCancelDone                   // A Query's in-flight I/O acknowledged cancellation
)

// event is the sole vocabulary the engine's single processing goroutine consumes. Every helper
// goroutine launched by the transport layer does exactly one blocking operation and then posts
// exactly one event; it never touches Lookup, Query or Engine state directly.
type event struct {
	kind   eventKind
	lookup *Lookup
	query  *Query
	gen    int // Timer generation, to ignore a timer event superseded by a rearm/disarm

	data   []byte
	length int
	addr   string
	conn   net.Conn
	err    error
}
