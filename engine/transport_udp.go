package engine

import "net"

// startUDPQuery implements the UDP leg of §4.3: dial and send in one helper goroutine (a UDP
// "dial" just binds a local socket and records the peer, so combining it with the single write
// keeps the "one blocking operation per goroutine" rule without adding an extra event round-trip
// for no benefit). Completion - success or failure - is posted as a single evUDPSent.
func (eng *Engine) startUDPQuery(l *Lookup, q *Query) {
	eng.counters.send.Add()
	addr := q.Addr
	payload := l.rendered
	go func() {
		conn, err := net.Dial("udp", addr)
		if err == nil {
			_, err = conn.Write(payload)
		}
		eng.post(event{kind: evUDPSent, lookup: l, query: q, conn: conn, err: err})
	}()
}

// startUDPRecv launches the receive half: a single ReadFrom on the Query's socket, posted back as
// evUDPRecv. Closing q.conn (from clearQuery or cancelLookup) unblocks this read with an error,
// which is how cancellation reaches an in-flight UDP receive.
func (eng *Engine) startUDPRecv(l *Lookup, q *Query) {
	eng.counters.recv.Add()
	conn := q.conn
	go func() {
		buf := make([]byte, consts.LengthPrefixCeiling)
		n, _, err := conn.(*net.UDPConn).ReadFromUDP(buf)
		var data []byte
		if err == nil {
			data = buf[:n]
		}
		eng.post(event{kind: evUDPRecv, lookup: l, query: q, data: data, err: err})
	}()
}
