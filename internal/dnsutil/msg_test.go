package dnsutil

import (
	"net"
	"testing"

	"github.com/miekg/dns"
)

func TestFindOPT(t *testing.T) {
	mno := &dns.Msg{}
	if opt := FindOPT(mno); opt != nil {
		t.Error("FindOPT found an OPT RR in an empty message")
	}

	mno.Answer = append(mno.Answer, &dns.OPT{}) // Populate all-but Extra
	mno.Ns = append(mno.Ns, &dns.OPT{})
	if opt := FindOPT(mno); opt != nil {
		t.Error("FindOPT found an OPT RR in an empty Extra list")
	}

	myes := &dns.Msg{}
	newOpt := &dns.OPT{}
	myes.Extra = append(myes.Extra, newOpt)
	opt := FindOPT(myes)
	if opt == nil {
		t.Error("FindOPT did not an OPT RR")
	}

	if newOpt != opt {
		t.Error("FindOPT returned the wrong OPT RR")
	}
}

//////////////////////////////////////////////////////////////////////

func TestCreateECS(t *testing.T) {
	m := &dns.Msg{}
	CreateECS(m, 1, 19, net.IP{})

	opt := FindOPT(m)
	if opt == nil || len(opt.Option) != 1 {
		t.Fatal("CreateECS did not attach an OPT/ECS sub-option")
	}
	subOpt, ok := opt.Option[0].(*dns.EDNS0_SUBNET)
	if !ok {
		t.Fatal("CreateECS's sub-option is not an EDNS0_SUBNET")
	}

	if subOpt.Family != 1 {
		t.Error("CreateECS created wrong family. Want 1, got", subOpt.Family)
	}

	if subOpt.SourceNetmask != 19 {
		t.Error("CreateECS created wrong SourceNetmask. Want 19, got", subOpt.SourceNetmask)
	}

	// Make sure no other damage to the message

	if len(m.Extra) != 1 {
		t.Error("Should be exactly one OPT, not", len(m.Extra))
	}

	// Create with a prepopulated OPT

	m2 := &dns.Msg{}
	m2.Extra = append(m2.Extra, &dns.OPT{})

	CreateECS(m2, 2, 71, net.IP{})

	opt2 := FindOPT(m2)
	if opt2 == nil || len(opt2.Option) != 1 {
		t.Fatal("CreateECS did not attach an ECS sub-option to the pre-existing OPT")
	}
	subOpt2, ok := opt2.Option[0].(*dns.EDNS0_SUBNET)
	if !ok {
		t.Fatal("CreateECS's sub-option is not an EDNS0_SUBNET")
	}

	if subOpt2.Family != 2 {
		t.Error("CreateECS created wrong family. Want 2, got", subOpt2.Family)
	}

	if subOpt2.SourceNetmask != 71 {
		t.Error("CreateECS created wrong SourceNetmask. Want 71, got", subOpt2.SourceNetmask)
	}

	if len(m2.Extra) != 1 {
		t.Error("CreateECS should have reused the existing OPT, not added a second Extra RR")
	}
}

func TestNewOPT(t *testing.T) {
	opt := NewOPT()
	if opt.Hdr.Rrtype != dns.TypeOPT {
		t.Error("NewOPT did not set Hdr.Rrtype to dns.TypeOPT")
	}
	if opt.Hdr.Name != "." {
		t.Error("NewOPT did not set Hdr.Name to the root")
	}
	if opt.UDPSize() != dns.DefaultMsgSize {
		t.Error("NewOPT did not default UDPSize to dns.DefaultMsgSize")
	}
}
