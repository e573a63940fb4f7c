// digq issues DNS queries through the asynchronous query engine in package engine, printing
// results in a dig-like format. It is the CLI driver spec.md's ambient stack calls for: fill the
// engine's queue from flags/resolv.conf, run it to completion, print what comes back.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/gops/agent"
	"github.com/miekg/dns"

	"github.com/markdingo/digq/engine"
	"github.com/markdingo/digq/internal/constants"
	"github.com/markdingo/digq/internal/osutil"
	"github.com/markdingo/digq/internal/printer"
	"github.com/markdingo/digq/internal/resolvconf"
	"github.com/markdingo/digq/internal/xlog"
)

var (
	consts = constants.Get()
	cfg    *config

	stdout io.Writer
	stderr io.Writer

	flagSet *flag.FlagSet

	stopChannel chan os.Signal
)

func fatal(args ...interface{}) int {
	fmt.Fprint(stderr, "Fatal: ", consts.ProgramName, ": ")
	fmt.Fprintln(stderr, args...)
	return 1
}

// mainInit resets all program-wide state so mainExecute can be called more than once within a
// single process - the pattern trustydns' commands use so their tests never call os.Exit.
func mainInit(out, err io.Writer) {
	cfg = &config{}
	stdout = out
	stderr = err
	stopChannel = make(chan os.Signal, 4)
	osutil.SignalNotify(stopChannel)
}

func main() {
	mainInit(os.Stdout, os.Stderr)
	os.Exit(mainExecute(os.Args))
}

func mainExecute(args []string) int {
	flagSet = flag.NewFlagSet(args[0], flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	if err := parseCommandLine(args); err != nil {
		return 1 // Error already printed by the flag package
	}
	if cfg.help {
		usage(stdout)
		return 0
	}
	if cfg.version {
		fmt.Fprintln(stdout, consts.ProgramName, "Version:", consts.Version)
		return 0
	}

	if cfg.gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fatal("gops agent:", err)
		}
		defer agent.Close()
	}

	if len(cfg.setuidName) > 0 || len(cfg.setgidName) > 0 || len(cfg.chrootDir) > 0 {
		if err := osutil.Constrain(cfg.setuidName, cfg.setgidName, cfg.chrootDir); err != nil {
			return fatal(err)
		}
		if cfg.debug {
			fmt.Fprintln(stderr, ";; "+osutil.ConstraintReport())
		}
	}

	rc, err := buildResolverConfig()
	if err != nil {
		return fatal(err)
	}

	l, err := buildLookup(rc)
	if err != nil {
		return fatal(err)
	}

	var logger *slog.Logger
	if cfg.debug {
		logger = xlog.New(slog.LevelDebug)
	}
	cb := printer.New(stdout, cfg.short, logger)
	eng := engine.New(rc, cb)
	eng.Seed(l)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for sig := range stopChannel {
			if osutil.IsSignalUSR1(sig) {
				fmt.Fprintln(stderr, ";; "+eng.Report())
				continue
			}
			cancel()
			return
		}
	}()
	defer cancel()

	result := eng.Run(ctx)
	if cfg.debug {
		fmt.Fprintln(stderr, ";; "+eng.Report())
	}
	return int(result.ExitCode)
}

// buildResolverConfig loads resolv.conf then overlays any flag-supplied overrides.
func buildResolverConfig() (engine.ResolverConfig, error) {
	rc := engine.ResolverConfig{RRLimit: cfg.rrLimit, BestServerAlgorithm: cfg.bestServerAlgo}
	if cfg.servers.NArg() == 0 {
		fc, err := resolvconf.Load(cfg.resolvConfPath)
		if err != nil {
			return rc, err
		}
		rc.Servers = fc.Servers
		rc.Search = fc.Search
		rc.Ndots = fc.Ndots
		rc.Domain = fc.Domain
	} else {
		rc.Servers = cfg.servers.Args()
	}
	if len(cfg.domain) > 0 {
		rc.Domain = cfg.domain
	}
	if cfg.ndots > 0 {
		rc.Ndots = cfg.ndots
	}
	return rc, nil
}

// buildLookup turns the remaining command-line arguments and boolean flags into a single seeded
// engine.Lookup. Argument order follows dig(1): an optional "@server", then name, then an
// optional type, then an optional class - each recognised positionally by its own grammar.
func buildLookup(rc engine.ResolverConfig) (*engine.Lookup, error) {
	var name string
	var rdtype = dns.TypeA
	var rdclass uint16 = dns.ClassINET
	var servers []string

	for _, arg := range flagSet.Args() {
		switch {
		case strings.HasPrefix(arg, "@"):
			servers = append(servers, strings.TrimPrefix(arg, "@"))
		case name == "":
			name = arg
		default:
			if t, ok := dns.StringToType[strings.ToUpper(arg)]; ok {
				rdtype = t
				continue
			}
			if c, ok := dns.StringToClass[strings.ToUpper(arg)]; ok {
				rdclass = c
				continue
			}
			return nil, fmt.Errorf("unrecognized argument %q", arg)
		}
	}
	if name == "" {
		return nil, fmt.Errorf("a query name is required; consider -h")
	}

	l := engine.NewLookup(name, rdtype, rdclass)
	if len(servers) > 0 {
		l.Servers = engine.ServersFromNames(servers)
	}

	l.Recurse = cfg.recurse
	l.AAOnly = cfg.aaOnly
	l.AD = cfg.ad
	l.CD = cfg.cd
	l.DNSSEC = cfg.dnssec
	l.TCPMode = cfg.tcp || rdtype == dns.TypeAXFR || rdtype == dns.TypeIXFR
	l.IgnoreTC = cfg.ignoreTC
	l.Trace = cfg.trace
	l.TraceRoot = cfg.trace
	if cfg.trace {
		// +trace forces SOA at the root step only; FinalRdtype carries the real query type
		// forward so engine/followup.go's nsChase can restore it on every subsequent hop.
		l.FinalRdtype = l.Rdtype
		l.Rdtype = dns.TypeSOA
	}
	l.NSSearchOnly = cfg.nsSearchOnly
	l.ServfailStops = cfg.servfailStops
	l.BestEffort = cfg.bestEffort
	l.Defname = cfg.defname

	if cfg.retries > 0 {
		l.Retries = cfg.retries
	}
	if cfg.timeout > 0 {
		l.Timeout = time.Duration(cfg.timeout) * time.Second
	}
	if cfg.udpSize > 0 {
		l.UDPSize = uint16(cfg.udpSize)
	}
	l.Subnet = cfg.subnet
	if rdtype == dns.TypeIXFR {
		l.IXFRSerial = uint32(cfg.ixfrSerial)
	}
	if len(cfg.tsigName) > 0 {
		l.TSIGKey = &engine.TSIGKey{
			Name:      dns.Fqdn(cfg.tsigName),
			Algorithm: tsigAlgorithmFqdn(cfg.tsigAlgorithm),
			Secret:    cfg.tsigSecret,
		}
	}

	return l, nil
}

func tsigAlgorithmFqdn(name string) string {
	if name == "" {
		return dns.HmacSHA256
	}
	return dns.Fqdn(name)
}
