package engine

import (
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/miekg/dns"
)

// startFakeUDPServer binds an ephemeral loopback UDP socket and answers every inbound query with
// whatever handler returns (nil to drop the packet silently, simulating a non-responding server).
// It stands in for a real nameserver so engine tests can drive the whole UDP transport leg without
// touching the network beyond 127.0.0.1.
func startFakeUDPServer(t *testing.T, port int, handler func(*dns.Msg) *dns.Msg) (addr string, stop func()) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	go func() {
		buf := make([]byte, 65535)
		for {
			n, raddr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			q := new(dns.Msg)
			if err := q.Unpack(buf[:n]); err != nil {
				continue
			}
			resp := handler(q)
			if resp == nil {
				continue
			}
			out, err := resp.Pack()
			if err != nil {
				continue
			}
			conn.WriteToUDP(out, raddr)
		}
	}()
	return conn.LocalAddr().String(), func() { conn.Close() }
}

// startFakeTCPServer binds an ephemeral loopback TCP listener speaking the 2-byte length-prefixed
// DNS-over-TCP framing. handler is called once per accepted connection's first query and may
// return several messages in sequence, letting a test drive AXFR/IXFR-style streamed responses.
func startFakeTCPServer(t *testing.T, port int, handler func(*dns.Msg) []*dns.Msg) (addr string, stop func()) {
	t.Helper()
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: port})
	if err != nil {
		t.Fatalf("listen tcp: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveFakeTCPConn(conn, handler)
		}
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

func serveFakeTCPConn(conn net.Conn, handler func(*dns.Msg) []*dns.Msg) {
	defer conn.Close()
	var lenBuf [2]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return
	}
	length := binary.BigEndian.Uint16(lenBuf[:])
	body := make([]byte, length)
	if _, err := io.ReadFull(conn, body); err != nil {
		return
	}
	q := new(dns.Msg)
	if err := q.Unpack(body); err != nil {
		return
	}
	for _, resp := range handler(q) {
		out, err := resp.Pack()
		if err != nil {
			return
		}
		var outLen [2]byte
		binary.BigEndian.PutUint16(outLen[:], uint16(len(out)))
		if _, err := conn.Write(outLen[:]); err != nil {
			return
		}
		if _, err := conn.Write(out); err != nil {
			return
		}
	}
}

// startFakeUDPTCPServer binds both a UDP socket and a TCP listener to the same loopback port, the
// way a real nameserver does - needed for tests that exercise TC->TCP escalation, where the engine
// dials the identical address a second time over TCP.
func startFakeUDPTCPServer(t *testing.T, udpHandler func(*dns.Msg) *dns.Msg, tcpHandler func(*dns.Msg) []*dns.Msg) (addr string, stop func()) {
	t.Helper()
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("listen tcp: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port})
	if err != nil {
		ln.Close()
		t.Fatalf("listen udp on tcp's port %d: %v", port, err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveFakeTCPConn(conn, tcpHandler)
		}
	}()
	go func() {
		buf := make([]byte, 65535)
		for {
			n, raddr, err := udpConn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			q := new(dns.Msg)
			if err := q.Unpack(buf[:n]); err != nil {
				continue
			}
			resp := udpHandler(q)
			if resp == nil {
				continue
			}
			out, err := resp.Pack()
			if err != nil {
				continue
			}
			udpConn.WriteToUDP(out, raddr)
		}
	}()
	return ln.Addr().String(), func() { ln.Close(); udpConn.Close() }
}

// answerA builds a minimal, well-formed reply to q carrying one A record for the question name.
func answerA(q *dns.Msg, ip string) *dns.Msg {
	resp := new(dns.Msg)
	resp.SetReply(q)
	rr, _ := dns.NewRR(q.Question[0].Name + " 300 IN A " + ip)
	resp.Answer = append(resp.Answer, rr)
	return resp
}
