package engine

import (
	"encoding/binary"
	"fmt"
	"net"
)

// startTCPQuery dials a TCP connection to the Query's server (§4.3, §4.6 for zone transfers). One
// helper goroutine performs the dial; completion is posted as evTCPConnected.
func (eng *Engine) startTCPQuery(l *Lookup, q *Query) {
	eng.counters.sock.Add()
	addr := q.Addr
	go func() {
		conn, err := net.DialTimeout("tcp", addr, consts.TCPTimeout)
		eng.post(event{kind: evTCPConnected, lookup: l, query: q, conn: conn, err: err})
	}()
}

// writeTCPQuery writes the 2-byte length prefix followed by the rendered message (§4.2 step 9,
// §6.1 "tcp framing"). The length is written as a 16-bit value; no check is made here or in
// setupLookup for a rendered message longer than 65535 bytes.
func (eng *Engine) writeTCPQuery(l *Lookup, q *Query) {
	eng.counters.send.Add()
	conn := q.conn
	payload := l.rendered
	go func() {
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)))
		_, err := conn.Write(lenBuf[:])
		if err == nil {
			_, err = conn.Write(payload)
		}
		eng.post(event{kind: evTCPWritten, lookup: l, query: q, err: err})
	}()
}

// readNextTCPMessage reads the next message's 2-byte length prefix (§4.6: every AXFR/IXFR response
// message, and every ordinary TCP response, is length-framed). Completion is posted as evTCPLenRead
// with the decoded length.
func (eng *Engine) readNextTCPMessage(q *Query) {
	l := q.Lookup
	eng.counters.recv.Add()
	conn := q.conn
	go func() {
		var lenBuf [2]byte
		_, err := readFull(conn, lenBuf[:])
		length := int(binary.BigEndian.Uint16(lenBuf[:]))
		eng.post(event{kind: evTCPLenRead, lookup: l, query: q, length: length, err: err})
	}()
}

// readTCPBody reads exactly length bytes following a previously read length prefix. A length above
// the protocol ceiling is treated as a per-query transport failure rather than a fatal process
// error (a deliberate, documented deviation - see DESIGN.md's Open Question resolutions).
func (eng *Engine) readTCPBody(l *Lookup, q *Query, length int) {
	eng.counters.recv.Add()
	if length > consts.LengthPrefixCeiling {
		eng.post(event{kind: evTCPBodyRead, lookup: l, query: q,
			err: fmt.Errorf("%stcp message length %d exceeds ceiling %d", me, length, consts.LengthPrefixCeiling)})
		return
	}
	conn := q.conn
	go func() {
		buf := make([]byte, length)
		_, err := readFull(conn, buf)
		eng.post(event{kind: evTCPBodyRead, lookup: l, query: q, data: buf, err: err})
	}()
}

// readFull reads exactly len(buf) bytes, or returns the first error encountered (including a short
// read at EOF). It exists because net.Conn.Read may return fewer bytes than requested even for a
// connection-oriented stream.
func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
