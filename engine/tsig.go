package engine

import (
	"github.com/miekg/dns"
)

// tsigContext carries TSIG verification state across the messages of a multi-message TCP response
// (§4.2 step 8, §6.1 "tcp_continuation"). The first message in a stream is verified against the
// query's own signature; every later message verifies against the previous message's MAC with
// timersOnly semantics, per RFC 2845 §4.4.
type tsigContext struct {
	key         *TSIGKey
	lastMAC     string
	messageSeen int
}

func newTsigContext(key *TSIGKey) *tsigContext {
	return &tsigContext{key: key}
}

// sign renders and signs the outbound query, returning the wire bytes. Called once per Lookup;
// the same signed bytes are reused for every server (§4.2 step 9).
func (ctx *tsigContext) sign(m *dns.Msg) ([]byte, error) {
	raw, err := m.Pack()
	if err != nil {
		return nil, err
	}
	signed, mac, err := dns.TsigGenerate(m, ctx.key.Secret, "", false)
	if err != nil {
		return nil, err
	}
	ctx.lastMAC = mac
	_ = raw
	return signed, nil
}

// verify checks an inbound message's TSIG record. The first message of a stream is verified
// against the rendered query's MAC (ordinary verification); continuation messages are verified
// timers-only against the previous message's MAC. Failure sets Lookup.validated=false but is not
// fatal (§7 "TSIG verify failure").
func (ctx *tsigContext) verify(l *Lookup, raw []byte) bool {
	if ctx == nil || ctx.key == nil {
		return true
	}
	timersOnly := ctx.messageSeen > 0
	err := dns.TsigVerify(raw, ctx.key.Secret, ctx.lastMAC, timersOnly)
	ctx.messageSeen++
	m := new(dns.Msg)
	if unpackErr := m.Unpack(raw); unpackErr == nil {
		if t := m.IsTsig(); t != nil {
			ctx.lastMAC = t.MAC
		}
	}
	if err != nil {
		l.validated = false
		return false
	}
	l.validated = true
	return true
}
