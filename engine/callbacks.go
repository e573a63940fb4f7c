package engine

import (
	"time"

	"github.com/miekg/dns"
)

// OutputCallbacks is the output API the driver must supply (§6.4). The engine invokes these
// synchronously from its single processing goroutine; implementations must not block.
type OutputCallbacks interface {
	// OnTrying is invoked just before the first query for a Lookup is sent.
	OnTrying(name string, l *Lookup)

	// OnMessage is invoked for every parsed response that passes the truncation and SERVFAIL
	// gates, before any follow-up processing occurs.
	OnMessage(q *Query, msg *dns.Msg, rtt time.Duration)

	// OnReceived is invoked with a Lookup's printable outcome: its response, or the error that
	// ended it. Follow-up lookups (search-list advance, NS chase) may still be generated from that
	// response after this call.
	OnReceived(l *Lookup, msg *dns.Msg, err error)

	// OnShutdown is invoked exactly once, when the engine has drained its queue and is about
	// to return from Run.
	OnShutdown(result Result)
}

// NullCallbacks is a no-op OutputCallbacks, useful for tests that only care about Result.
type NullCallbacks struct{}

func (NullCallbacks) OnTrying(string, *Lookup)                 {}
func (NullCallbacks) OnMessage(*Query, *dns.Msg, time.Duration) {}
func (NullCallbacks) OnReceived(*Lookup, *dns.Msg, error)       {}
func (NullCallbacks) OnShutdown(Result)                         {}
