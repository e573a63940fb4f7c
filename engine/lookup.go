package engine

import (
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/digq/internal/bestserver"
)

// TSIGKey carries a transaction signature key. When set on a Lookup, the rendered outbound message
// is signed, and tsigCtx/lastQuerySig carry verification state across the messages of a multi-
// message TCP response stream (see tsig.go).
type TSIGKey struct {
	Name      string // Owner name of the key, fully qualified
	Algorithm string // e.g. dns.HmacSHA256
	Secret    string // Base64, as accepted by dns.TsigGenerate
}

// Lookup is one user-level question being resolved, with all its policy. See SPEC_FULL.md §3.
type Lookup struct {
	Textname string // As typed - relative or absolute
	Rdtype   uint16
	Rdclass  uint16

	Servers      []*Server
	Queries      []*Query
	CurrentQuery *Query
	XfrQuery     *Query // Non-nil once a zone transfer has chosen its one true Query

	Origin       *string // Pointer into the search list, or a fixed override, or nil (absolute)
	fixedOrigin  bool     // True if Origin came from domain override rather than the search list
	searchIndex  int      // Index into ResolverConfig.Search that Origin currently reflects

	// Policy flags
	Recurse       bool
	AAOnly        bool
	AD            bool
	CD            bool
	DNSSEC        bool
	TCPMode       bool
	IgnoreTC      bool
	Trace         bool
	TraceRoot     bool
	FinalRdtype   uint16 // The user's actual query type; only meaningful while Trace forces Rdtype to SOA at the root
	NSSearchOnly  bool
	ServfailStops bool
	BestEffort    bool
	Nibble        bool
	Identify      bool
	Defname       bool
	NewSearch     bool

	Retries int
	UDPSize uint16
	Subnet  string // CIDR, e.g. "1.2.3.0/24"; non-empty synthesizes an EDNS0 Client Subnet option

	Timeout time.Duration // Caller-supplied override; 0 means "use default per transport" (§4.4)

	IXFRSerial uint32

	TSIGKey *TSIGKey

	Pending bool

	Timer *lookupTimer

	MsgCounter int

	rendered     []byte // The once-rendered outbound message, reused for every server
	question     *dns.Msg
	tsigState    *tsigContext // nil unless TSIGKey is set
	recursionTag int          // Depth of follow-up chases from the seeding lookup; checked against
	                          // consts.LookupLimit in Engine.startNext, reset to 0 when NewSearch fires

	rrLimit     int  // Zone transfer RR cap inherited from ResolverConfig; 0 == unlimited
	validated   bool // Cleared by a TSIG verify failure; does not abort the lookup

	bestServers bestserver.Manager // Records each Query's outcome (traditional or latency), built by setupLookup

	onDone func(*Lookup) // Invoked by the engine exactly once when every Query has been cleared
}

// newLookup returns a zero-value Lookup with the engine's default policy applied. Callers
// (cmd/digq's seed path, or the follow-up generator) fill in the rest.
func newLookup() *Lookup {
	c := consts
	return &Lookup{
		Rdclass:   dns.ClassINET,
		Retries:   c.DefaultRetries,
		NewSearch: true,
	}
}

// NewLookup is the exported constructor a driver uses to seed a user-level question. textname is
// as typed on the command line; rdtype/rdclass default to A/IN if zero.
func NewLookup(textname string, rdtype, rdclass uint16) *Lookup {
	l := newLookup()
	l.Textname = textname
	if rdtype != 0 {
		l.Rdtype = rdtype
	}
	if rdclass != 0 {
		l.Rdclass = rdclass
	}
	return l
}

// clone produces a follow-up Lookup that shares no mutable state with its parent: a fresh Server
// list (cloneServers), a fresh Query list (populated by the next setupLookup call), and the policy
// flags the caller chooses to carry forward. It does not copy Queries, Timer, rendered or
// tsigState - those are rebuilt by setupLookup.
func (l *Lookup) clone() *Lookup {
	n := *l
	n.Servers = cloneServers(l.Servers)
	n.Queries = nil
	n.CurrentQuery = nil
	n.XfrQuery = nil
	n.Timer = nil
	n.rendered = nil
	n.question = nil
	n.tsigState = nil
	n.bestServers = nil
	n.Pending = false
	n.onDone = nil
	return &n
}
