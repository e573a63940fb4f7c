package engine

import (
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/markdingo/digq/internal/bestserver"
	"github.com/markdingo/digq/internal/dnsutil"
)

// countDots returns the number of '.' characters in name, ignoring one trailing dot if present
// (an already-absolute name's terminator doesn't count towards ndots).
func countDots(name string) int {
	n := strings.TrimSuffix(name, ".")
	return strings.Count(n, ".")
}

// resolveOrigin implements §4.2 step 2: decide whether this Lookup is tried absolute, and if not,
// which search/domain origin it should be tried against first.
func (eng *Engine) resolveOrigin(l *Lookup) {
	if countDots(l.Textname) >= eng.resolver.Ndots || l.Defname {
		l.Origin = nil
		return
	}

	if l.Origin != nil {
		return // Already assigned by a prior clone/follow-up
	}

	haveSearch := len(eng.resolver.Search) > 0 || len(eng.resolver.Domain) > 0
	if !l.NewSearch || !haveSearch {
		return
	}

	if len(eng.resolver.Domain) > 0 {
		d := eng.resolver.Domain
		l.Origin = &d
		l.fixedOrigin = true
		return
	}

	if len(eng.resolver.Search) > 0 {
		l.searchIndex = 0
		d := eng.resolver.Search[0]
		l.Origin = &d
	}
}

// queryName builds the fully-qualified name this Lookup will ask about.
func (l *Lookup) queryName() string {
	if l.TraceRoot {
		return "."
	}
	name := dns.Fqdn(l.Textname)
	if l.Origin != nil {
		name = dns.Fqdn(l.Textname + "." + strings.TrimSuffix(*l.Origin, "."))
	}
	return name
}

// setupLookup implements §4.2: produce a fully-formed outbound message and one Query per server.
func (eng *Engine) setupLookup(l *Lookup) error {
	if len(l.Servers) == 0 {
		l.Servers = ServersFromNames(eng.resolver.Servers)
	}
	if len(l.Servers) == 0 {
		l.Servers = ServersFromNames([]string{"127.0.0.1"})
	}

	eng.resolveOrigin(l)

	qname := l.queryName()
	if _, ok := dns.IsDomainName(qname); !ok {
		return fatalf("%q is not a usable domain name", l.Textname)
	}

	rdtype := l.Rdtype
	if rdtype == 0 {
		rdtype = dns.TypeA
	}
	l.Rdtype = rdtype
	if l.Rdclass == 0 {
		l.Rdclass = dns.ClassINET
	}

	m := new(dns.Msg)
	m.Id = dns.Id()
	m.Question = []dns.Question{{Name: qname, Qtype: rdtype, Qclass: l.Rdclass}}
	m.RecursionDesired = l.Recurse && !l.Trace && !l.NSSearchOnly
	m.AuthenticatedData = l.AD
	m.CheckingDisabled = l.CD
	if l.AAOnly {
		m.Authoritative = true
	}

	if rdtype == dns.TypeAXFR || rdtype == dns.TypeIXFR {
		l.TCPMode = true
		if rdtype == dns.TypeIXFR {
			soa := &dns.SOA{
				Hdr:    dns.RR_Header{Name: qname, Rrtype: dns.TypeSOA, Class: l.Rdclass, Ttl: 0},
				Serial: l.IXFRSerial,
			}
			m.Ns = append(m.Ns, soa)
		}
	}

	udpSize := l.UDPSize
	if udpSize == 0 && l.DNSSEC {
		udpSize = consts.DefaultUDPSize
	}
	if udpSize > 0 || l.DNSSEC {
		opt := dnsutil.NewOPT()
		if udpSize > 0 {
			opt.SetUDPSize(udpSize)
		}
		if l.DNSSEC {
			opt.SetDo()
		}
		m.Extra = append(m.Extra, opt)
	}

	if l.Subnet != "" {
		ip, ipnet, err := net.ParseCIDR(l.Subnet)
		if err != nil {
			return fatalf("parsing -subnet %q: %w", l.Subnet, err)
		}
		family := 2
		if v4 := ip.To4(); v4 != nil {
			family = 1
			ip = v4
		}
		ones, _ := ipnet.Mask.Size()
		dnsutil.CreateECS(m, family, ones, ip)
	}

	l.question = m
	var rendered []byte
	var err error
	if l.TSIGKey != nil {
		m.SetTsig(l.TSIGKey.Name, l.TSIGKey.Algorithm, 300, 0)
		l.tsigState = newTsigContext(l.TSIGKey)
		rendered, err = l.tsigState.sign(m)
	} else {
		rendered, err = m.Pack()
	}
	if err != nil {
		return fatalf("rendering query for %q: %w", l.Textname, err)
	}
	l.rendered = rendered

	if rdtype == dns.TypeAXFR || rdtype == dns.TypeIXFR {
		// A zone transfer is a single serial conversation with one server, not a fan-out (§4.6).
		if len(l.Servers) > 1 {
			l.Servers = l.Servers[:1]
		}
	}

	l.Queries = l.Queries[:0]
	for _, srv := range l.Servers {
		q := &Query{Lookup: l, ServerName: srv.Name, srv: srv}
		l.Queries = append(l.Queries, q)
	}
	if len(l.Queries) > 0 && (rdtype == dns.TypeAXFR || rdtype == dns.TypeIXFR) {
		l.XfrQuery = l.Queries[0]
	}
	l.rrLimit = eng.resolver.RRLimit

	ifList := make([]bestserver.Server, 0, len(l.Servers))
	for _, s := range l.Servers {
		ifList = append(ifList, bsServer{s})
	}
	mgr, err := newBestServerManager(eng.resolver.BestServerAlgorithm, ifList)
	if err == nil {
		l.bestServers = mgr
	}

	return nil
}

// newBestServerManager picks the rotation policy for a Lookup's server list (§4.4). "latency"
// opts into the adaptive algorithm that favours whichever server has answered fastest recently;
// anything else (including the empty string) falls back to the Traditional res_send(3)-style
// policy, which is this engine's default.
func newBestServerManager(algorithm string, servers []bestserver.Server) (bestserver.Manager, error) {
	if algorithm == "latency" {
		return bestserver.NewLatency(bestserver.DefaultLatencyConfig, servers)
	}
	return bestserver.NewTraditional(bestserver.TraditionalConfig{}, servers)
}
