/*
Package constants provides common values used across all digq packages. Usage is to call the
global Get() function which returns the Constants by value ensuring that any modifications made
(accidental or otherwise) will not affect other modules when they call Get().

Typically usage:

    consts := constants.Get()
    fmt.Println("I am", consts.ProgramName, "talking", consts.RFC)

The primary reason for making this a constructed struct rather than the more typical const () block
is so that it can be fed directly into templating packages for printing usage messages.
*/
package constants

import "time"

// Constants contains the system-wide constants
type Constants struct {
	ProgramName string
	Version     string
	PackageName string
	PackageURL  string
	RFC         string

	DNSDefaultPort  string // Suitable for net.JoinHostPort
	DNSUDPTransport string // Suitable for the "net" package, but just to make sure we're
	DNSTCPTransport string // consistent across the whole package.

	DefaultNdots int // Applied when resolv.conf doesn't set "options ndots:N"

	UDPTimeout    time.Duration // Timer value for a query on a fresh UDP socket
	TCPTimeout    time.Duration // Timer value for a query on a fresh TCP connection
	ServerTimeout time.Duration // Timer value used when there is a successor server to try next

	XFRTimeoutMultiplier time.Duration // Active timeout is multiplied by this while a transfer streams
	XFRTimeoutCap        time.Duration // ...but never exceeds this

	DefaultRetries int // Lookup.Retries when not otherwise specified

	DefaultUDPSize uint16 // EDNS0 sender buffer size used when a caller asks for one but supplies zero

	LengthPrefixCeiling int // Maximum declared TCP message length this engine will buffer (COMMSIZE equivalent)

	LookupLimit int // Follow-up recursion guard (NS chase / search-list / trace)

	MXServ int // Maximum number of servers seeded from a root NS probe during +trace

	DefaultRRLimit int // Zone transfer RR cap (0 == unlimited)
}

var readOnlyConstants *Constants

// createReadOnlyConstants creates a read-only copy of the Constants which is copied whenever a
// caller asks for the constants set. The main reason for returning a struct is so that callers can
// inspect and/or use packages that introspect - particularly */template packages.
func createReadOnlyConstants() {
	readOnlyConstants = &Constants{
		ProgramName: "digq",
		Version:     "v0.1.0",
		PackageName: "digq - an asynchronous DNS diagnostic query engine",
		PackageURL:  "https://github.com/markdingo/digq",
		RFC:         "RFC1035",

		DNSDefaultPort:  "53",
		DNSUDPTransport: "udp",
		DNSTCPTransport: "tcp",

		DefaultNdots: 1,

		UDPTimeout:    time.Second * 5,
		TCPTimeout:    time.Second * 10,
		ServerTimeout: time.Second * 2,

		XFRTimeoutMultiplier: 4,
		XFRTimeoutCap:        time.Minute * 2,

		DefaultRetries: 3,

		DefaultUDPSize: 2048,

		LengthPrefixCeiling: 65535,

		LookupLimit: 256,

		MXServ: 32,

		DefaultRRLimit: 0,
	}
}

func init() {
	createReadOnlyConstants()
}

// Get returns a copy of the Constant struct. Return by value so internal values cannot be
// inadvertently changed by callers.
func Get() Constants {
	return *readOnlyConstants
}
