/*
Package dnsutil provides helper methods to manipulate the OPT pseudo-RR and its EDNS0 Client
Subnet sub-option in a "github.com/miekg/dns.Msg". The caller is assumed to have checked that the
dns.Msg is a legitimate IN/Query prior to calling any of these functions.

engine/setup.go's setupLookup uses NewOPT to attach the OPT record that advertises the engine's UDP
payload size and sets the DO bit for -dnssec, then calls CreateECS (which itself uses FindOPT) when
the "-subnet" flag asks for a synthesized EDNS0_SUBNET sub-option from a caller-specified CIDR.
*/
package dnsutil

import (
	"net"

	"github.com/miekg/dns"
)

// FindOPT searches dns.Msg.Extra for the first occurrence of an OPT RR. There should only be one.
//
// Return *dns.OPT if found otherwise nil
func FindOPT(q *dns.Msg) *dns.OPT {
	for _, rr := range q.Extra { // Search Extra for OPT RRs
		if opt, ok := rr.(*dns.OPT); ok {
			return opt
		}
	}

	return nil
}

// CreateECS arbitrarily creates an EDNS0_SUBNET sub-option which is appended to the OPT in the
// Extra section of the dns.Msg. If no OPT exists, one is created. This function does not check for
// any pre-existing EDNS0_SUBNET sub-option.
//
// Return the created ecs option.
func CreateECS(msg *dns.Msg, family, prefixLength int, ip net.IP) *dns.EDNS0_SUBNET {
	ecs := &dns.EDNS0_SUBNET{
		Code:          dns.EDNS0SUBNET,
		Family:        uint16(family),
		SourceNetmask: uint8(prefixLength),
		Address:       ip, // dns.OPT.pack() truncate this to SourceNetmask
	}

	optRR := FindOPT(msg)
	if optRR == nil { // if necessary, construct an OPT RR to contain the new ECS sub-opt
		optRR = NewOPT()
		msg.Extra = append(msg.Extra, optRR)
	}

	optRR.Option = append(optRR.Option, ecs)

	return ecs
}

// NewOPT creates a populated msg.OPT RR as a zero-values struct is not a valid OPT. Note that
// SetUDPSize has to be set for some resolvers that are ECS aware. In particular unbound does not
// seem to like a UDP size of zero.
func NewOPT() *dns.OPT {
	optRR := &dns.OPT{}
	optRR.SetVersion(0)
	optRR.SetUDPSize(dns.DefaultMsgSize)
	optRR.Hdr.Name = "."
	optRR.Hdr.Rrtype = dns.TypeOPT

	return optRR
}
