package engine

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/markdingo/digq/internal/constants"
)

var consts = constants.Get()

// ResolverConfig is the engine's view of resolv.conf-derived configuration (§6.2). It is produced
// by internal/resolvconf and consumed directly by setupLookup.
type ResolverConfig struct {
	Servers []string // Default server list, used when a Lookup supplies none
	Search  []string // Search list, in order
	Domain  string    // Fixed domain override; if set, wins over Search and is tried first
	Ndots   int

	RRLimit int // Zone transfer RR cap; 0 == unlimited

	BestServerAlgorithm string // "traditional" (default) or "latency"; see bestserver.Manager
}

// Engine is the process-wide owner of the lookup queue, the current lookup, and the three
// non-negative resource counters (§9 "Global mutable state" maps to an Engine value). All of its
// methods except Seed/CancelAll are only ever called from the single goroutine running Run.
type Engine struct {
	mu sync.Mutex // Protects only the fields touched by Seed/CancelAll, which may be called from
	               // outside the Run goroutine; everything else in Engine is confined to Run.

	queue   *list.List // FIFO of *Lookup; follow-ups are prepended, seeds are appended (§4.1)
	current *Lookup

	counters *counters
	events   chan event

	cb       OutputCallbacks
	resolver ResolverConfig

	cancelNow bool
	result    Result

	resolveAddr addrResolveFunc
}

// New constructs an Engine ready to accept Seed calls.
func New(rc ResolverConfig, cb OutputCallbacks) *Engine {
	if cb == nil {
		cb = NullCallbacks{}
	}
	if rc.Ndots <= 0 {
		rc.Ndots = consts.DefaultNdots
	}
	return &Engine{
		queue:       list.New(),
		counters:    newCounters(),
		events:      make(chan event, 64),
		cb:          cb,
		resolver:    rc,
		resolveAddr: defaultResolveAddr,
	}
}

// Seed appends a user-seeded Lookup to the tail of the queue (§4.1 "seeded user lookups are
// appended"). Safe to call before Run, or from another goroutine while Run is executing.
func (eng *Engine) Seed(l *Lookup) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	l.recursionTag = 0
	eng.queue.PushBack(l)
}

// post delivers an event onto the engine's channel. Called from transport helper goroutines and
// from timers; never blocks for long since the channel is generously buffered and Run drains it
// continuously.
func (eng *Engine) post(e event) {
	eng.events <- e
}

// Run drives the event loop to completion: pop a lookup, run it (including any follow-ups it
// spawns), and repeat until the queue is empty, no lookup is current, and all resource counters
// have returned to zero (§8).
func (eng *Engine) Run(ctx context.Context) Result {
	eng.startNext()
	for {
		if eng.current == nil && eng.queueEmpty() && eng.counters.idle() {
			break
		}
		select {
		case ev := <-eng.events:
			eng.handleEvent(ev)
			if eng.current == nil {
				eng.startNext()
			}
		case <-ctx.Done():
			eng.CancelAll()
		}
	}
	eng.cb.OnShutdown(eng.result)
	return eng.result
}

func (eng *Engine) queueEmpty() bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.queue.Len() == 0
}

// startNext pops the head of the queue and begins running it. A no-op if the queue is empty or a
// lookup is already current.
func (eng *Engine) startNext() {
	if eng.current != nil {
		return
	}
	eng.mu.Lock()
	front := eng.queue.Front()
	var l *Lookup
	if front != nil {
		l = front.Value.(*Lookup)
		eng.queue.Remove(front)
	}
	eng.mu.Unlock()
	if l == nil {
		return
	}

	if eng.cancelNow {
		return // Draining after a shutdown request; don't start new work
	}

	if l.NewSearch {
		l.recursionTag = 0 // §3: new_search resets the recursion counter on entry
	}
	if l.recursionTag > consts.LookupLimit {
		eng.result.ratchet(ExitInternal, fatalf("lookup recursion limit (%d) exceeded", consts.LookupLimit))
		return
	}

	eng.current = l
	l.onDone = eng.onLookupDone
	if err := eng.setupLookup(l); err != nil {
		eng.result.ratchet(ExitUsage, err)
		eng.current = nil
		return
	}
	eng.cb.OnTrying(l.Textname, l)
	eng.doLookup(l)
}

// onLookupDone is invoked by tryClearLookup exactly once, when a Lookup's Query list has drained
// to empty. It hands control back to the scheduler.
func (eng *Engine) onLookupDone(l *Lookup) {
	if eng.current == l {
		eng.current = nil
	}
}

// seedFollowup prepends a follow-up Lookup so that NS-chase order is preserved depth-first (§4.1).
func (eng *Engine) seedFollowup(parent *Lookup, l *Lookup) {
	l.recursionTag = parent.recursionTag + 1
	eng.mu.Lock()
	eng.queue.PushFront(l)
	eng.mu.Unlock()
}

// CancelAll is the shutdown-by-signal entry point (§4.8): mark cancel_now, cancel the current
// lookup's sockets, then drain the queue. Safe to call from any goroutine.
func (eng *Engine) CancelAll() {
	eng.mu.Lock()
	eng.cancelNow = true
	for e := eng.queue.Front(); e != nil; {
		next := e.Next()
		eng.queue.Remove(e)
		e = next
	}
	eng.mu.Unlock()
	if eng.current != nil {
		eng.cancelLookup(eng.current)
	}
}

// Shutdown returns the final Result after Run has returned. It exists as a separate accessor so
// that a driver polling asynchronously (e.g. from a signal handler) can read the outcome without
// racing Run's own return.
func (eng *Engine) Shutdown() Result {
	return eng.result
}

// Report returns a one-line socket-occupancy summary plus peak concurrency counts, suitable for a
// driver's "-d" diagnostic output.
func (eng *Engine) Report() string {
	return fmt.Sprintf("%s peakSend=%d peakRecv=%d peakSock=%d",
		eng.counters.socks.Report(false),
		eng.counters.send.Peak(false), eng.counters.recv.Peak(false), eng.counters.sock.Peak(false))
}
