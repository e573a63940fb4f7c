package engine

import (
	"github.com/miekg/dns"
)

// xfrResult is returned by processXFRMessage.
type xfrResult int

const (
	xfrContinue xfrResult = iota // Need more data; request the next length-prefixed message
	xfrDone                     // Stream complete; cancel the lookup and let the scheduler advance
	xfrFailed                   // Malformed stream
	xfrRRLimit                  // RR count exceeded the configured cap
)

// processXFRMessage implements the zone-transfer consumer state machine of §4.6, evaluated per RR
// in the ANSWER section of every inbound message for the Lookup's one true xfr Query.
func processXFRMessage(l *Lookup, q *Query, msg *dns.Msg) (xfrResult, error) {
	simplifiedAXFR := l.Rdtype == dns.TypeAXFR

	for _, rr := range msg.Answer {
		q.RRCount++
		if l.rrLimit > 0 && q.RRCount >= l.rrLimit {
			return xfrRRLimit, nil
		}

		soa, isSOA := rr.(*dns.SOA)

		switch {
		case !q.firstSOARcvd: // no SOA seen
			if !isSOA {
				return xfrFailed, fatalf("zone transfer for %q didn't start with SOA", l.Textname)
			}
			q.firstSOARcvd = true
			q.firstRRSerial = soa.Serial
			if l.Rdtype == dns.TypeIXFR && l.IXFRSerial >= soa.Serial {
				return xfrDone, nil // Nothing to transfer
			}

		case simplifiedAXFR:
			if isSOA { // Second SOA: stream complete
				return xfrDone, nil
			}
			// else: continue, AXFR has no intermediate state to track

		case !q.secondRRRcvd && !q.inIXFR: // one SOA seen
			switch {
			case !isSOA:
				q.secondRRRcvd = true
				q.secondRRSerial = 0
				q.inAXFR = true

			case soa.Serial == q.firstRRSerial: // Trivial IXFR: empty zone
				return xfrDone, nil

			default: // Differing serial: this is an IXFR
				q.secondRRRcvd = true
				q.secondRRSerial = soa.Serial
				q.inIXFR = true
			}

		case q.inAXFR:
			if isSOA { // Final SOA: stream complete
				return xfrDone, nil
			}

		case q.inIXFR:
			if isSOA {
				if soa.Serial == q.firstRRSerial {
					if q.firstRepeatRcvd {
						return xfrDone, nil
					}
					q.firstRepeatRcvd = true
				}
				// else: a meaningless intermediate SOA; keep going
			}
		}
	}

	return xfrContinue, nil
}
