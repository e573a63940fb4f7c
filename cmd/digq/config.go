package main

import (
	"github.com/markdingo/digq/internal/flagutil"
)

// config holds every command-line-settable value. It mirrors trustydns-dig's config struct:
// a flat bag of fields filled in by parseCommandLine, consulted nowhere else.
type config struct {
	help    bool
	version bool
	short   bool
	gops    bool
	debug   bool

	resolvConfPath string
	domain         string
	ndots          int
	rrLimit        int
	bestServerAlgo string

	servers flagutil.StringValue // Repeated "-ns"/"@server" style overrides

	recurse       bool
	aaOnly        bool
	ad            bool
	cd            bool
	dnssec        bool
	tcp           bool
	ignoreTC      bool
	trace         bool
	nsSearchOnly  bool
	servfailStops bool
	bestEffort    bool
	defname       bool

	retries int
	timeout int
	udpSize int
	subnet  string

	ixfrSerial uint

	tsigName      string
	tsigAlgorithm string
	tsigSecret    string

	setuidName string
	setgidName string
	chrootDir  string
}
