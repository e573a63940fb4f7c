package engine

import (
	"testing"

	"github.com/miekg/dns"
)

func TestCountDots(t *testing.T) {
	cases := map[string]int{
		"example":        0,
		"example.net":    1,
		"example.net.":   1, // trailing dot doesn't count
		"a.b.c":          2,
		".":              0,
	}
	for name, want := range cases {
		if got := countDots(name); got != want {
			t.Errorf("countDots(%q) = %d, want %d", name, got, want)
		}
	}
}

// TestResolveOriginNdotsBoundary checks the ndots cutoff (§4.2 step 2): a name with fewer dots than
// Ndots is tried against the search list first; a name with Ndots dots or more is absolute from the
// start.
func TestResolveOriginNdotsBoundary(t *testing.T) {
	eng := New(ResolverConfig{Search: []string{"example.com"}, Ndots: 2}, nil)

	below := newLookup()
	below.Textname = "a.b" // 1 dot, below the threshold
	eng.resolveOrigin(below)
	if below.Origin == nil || *below.Origin != "example.com" {
		t.Errorf("below ndots threshold: expected search origin, got %v", below.Origin)
	}

	atThreshold := newLookup()
	atThreshold.Textname = "a.b.c" // 2 dots, at the threshold
	eng.resolveOrigin(atThreshold)
	if atThreshold.Origin != nil {
		t.Errorf("at ndots threshold: expected absolute (nil origin), got %q", *atThreshold.Origin)
	}
}

// TestResolveOriginDefnameForcesAbsolute checks that Defname always wins regardless of dot count.
func TestResolveOriginDefnameForcesAbsolute(t *testing.T) {
	eng := New(ResolverConfig{Search: []string{"example.com"}, Ndots: 4}, nil)
	l := newLookup()
	l.Textname = "a"
	l.Defname = true
	eng.resolveOrigin(l)
	if l.Origin != nil {
		t.Errorf("Defname should force an absolute lookup, got origin %q", *l.Origin)
	}
}

// TestSetupLookupSubnetECS checks that a non-empty Subnet synthesizes an EDNS0 Client Subnet option
// on the rendered outbound message, with the address family and prefix length derived from the CIDR.
func TestSetupLookupSubnetECS(t *testing.T) {
	eng := New(ResolverConfig{}, nil)
	l := newLookup()
	l.Textname = "example.net"
	l.Subnet = "203.0.113.0/24"
	l.Servers = ServersFromNames([]string{"192.0.2.53"})

	if err := eng.setupLookup(l); err != nil {
		t.Fatalf("setupLookup: %v", err)
	}

	opt := l.question.IsEdns0()
	if opt == nil {
		t.Fatal("expected an OPT record once Subnet is set")
	}
	var ecs *dns.EDNS0_SUBNET
	for _, o := range opt.Option {
		if s, ok := o.(*dns.EDNS0_SUBNET); ok {
			ecs = s
		}
	}
	if ecs == nil {
		t.Fatal("expected an EDNS0_SUBNET sub-option")
	}
	if ecs.Family != 1 {
		t.Errorf("expected family 1 (IPv4), got %d", ecs.Family)
	}
	if ecs.SourceNetmask != 24 {
		t.Errorf("expected source netmask 24, got %d", ecs.SourceNetmask)
	}
}

// TestSetupLookupBadSubnetErrors checks that an unparsable -subnet value is rejected rather than
// silently ignored.
func TestSetupLookupBadSubnetErrors(t *testing.T) {
	eng := New(ResolverConfig{}, nil)
	l := newLookup()
	l.Textname = "example.net"
	l.Subnet = "not-a-cidr"
	l.Servers = ServersFromNames([]string{"192.0.2.53"})

	if err := eng.setupLookup(l); err == nil {
		t.Fatal("expected an error for a malformed -subnet value")
	}
}
