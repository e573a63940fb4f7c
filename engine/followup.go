package engine

import (
	"strings"

	"github.com/miekg/dns"
)

// generateFollowups implements §4.7: search-list advance, NS/trace chase, and (via the truncation
// gate in response.go) TC->TCP escalation. It is called once per response, after the response
// gates in handleResponse have let the message through.
func (eng *Engine) generateFollowups(l *Lookup, msg *dns.Msg) {
	if eng.searchListAdvance(l, msg) {
		return // The lookup has been re-queued against the next search origin; don't also chase NS
	}
	eng.nsChase(l, msg)
}

// searchListAdvance implements the first rule of §4.7: on a non-zero rcode, if the lookup still
// has a search origin, advance to the next search entry (or drop the fixed override) and re-queue.
// A lookup advances only on non-zero rcode responses, never merely because a "better" answer might
// exist elsewhere.
func (eng *Engine) searchListAdvance(l *Lookup, msg *dns.Msg) bool {
	if msg.Rcode == dns.RcodeSuccess {
		return false
	}
	if l.Origin == nil {
		return false
	}
	if l.fixedOrigin {
		// A fixed domain override only gets one try; on failure move to the first search entry,
		// or to the absolute name when there is no search list.
		n := l.clone()
		n.Origin = nil
		n.fixedOrigin = false
		n.searchIndex = 0
		if len(eng.resolver.Search) > 0 {
			d := eng.resolver.Search[0]
			n.Origin = &d
		}
		n.NewSearch = false
		eng.seedFollowup(l, n)
		eng.cancelLookup(l)
		return true
	}

	if len(eng.resolver.Search) == 0 {
		return false
	}
	next := l.searchIndex + 1
	if next >= len(eng.resolver.Search) {
		return false // Exhausted the search list; let the caller see this response
	}

	n := l.clone()
	n.searchIndex = next
	d := eng.resolver.Search[next]
	n.Origin = &d
	n.NewSearch = false
	eng.seedFollowup(l, n)
	eng.cancelLookup(l)
	return true
}

// nsChase implements the second rule of §4.7: +trace / ns_search_only NS walking.
func (eng *Engine) nsChase(l *Lookup, msg *dns.Msg) {
	if !l.Trace && !l.NSSearchOnly {
		return
	}

	section := msg.Answer
	fromAnswer := true
	nsNames := collectNS(section)
	if len(nsNames) == 0 {
		section = msg.Ns
		fromAnswer = false
		nsNames = collectNS(section)
	}
	if len(nsNames) == 0 {
		return // Terminal answer with no delegation to chase
	}

	max := len(nsNames)
	if l.TraceRoot && max > consts.MXServ {
		max = consts.MXServ
	}

	n := l.clone()
	n.TraceRoot = false
	n.Servers = ServersFromNames(nsNames[:max])
	n.NewSearch = false
	if l.TraceRoot {
		// Only the root step of a trace forces SOA (spec.md §3/§8 scenario 4); every later
		// delegation hop re-asks the user's actual query type against the next NS set.
		n.Rdtype = l.FinalRdtype
	} else {
		n.Rdtype = l.Rdtype
	}

	if fromAnswer { // The chain is complete: this is a terminal answer, not a further delegation
		n.Trace = false
		n.NSSearchOnly = false
	}

	eng.seedFollowup(l, n)
	eng.cancelLookup(l)
}

func collectNS(rrs []dns.RR) []string {
	var names []string
	for _, rr := range rrs {
		if ns, ok := rr.(*dns.NS); ok {
			names = append(names, strings.TrimSuffix(ns.Ns, "."))
		}
	}
	return names
}
