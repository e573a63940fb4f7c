package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
)

const usageMessageTemplate = `
NAME
          {{.ProgramName}} -- an asynchronous DNS diagnostic query program

SYNOPSIS
          {{.ProgramName}} [options] [@server] name [type [class]]

DESCRIPTION
          {{.ProgramName}} issues one or more DNS queries and prints the responses, much as
          dig(1) does, but driven by a single-goroutine query engine that runs its
          lookups and follow-ups (search-list rotation, NS chase for +trace, AXFR/IXFR
          transfers) one at a time, without a pool of blocked goroutines.

          **********
          Production Use Alert: {{.ProgramName}} is a diagnostic tool. Its output format is
          not a stable interface; don't parse it in a shell script.
          **********

EXAMPLES
            $ {{.ProgramName}} @8.8.8.8 example.net MX
            $ {{.ProgramName}} +trace example.net
            $ {{.ProgramName}} +tcp example.net AXFR

OPTIONS
`

func usage(out io.Writer) {
	tmpl, err := template.New("usage").Parse(usageMessageTemplate)
	if err != nil {
		panic(err)
	}
	if err := tmpl.Execute(out, consts); err != nil {
		panic(err)
	}
	flagSet.SetOutput(out)
	flagSet.PrintDefaults()
	fmt.Fprintln(out, "\nVersion:", consts.Version)
}

// splitPlusArgs peels dig(1)-style "+flag"/"+noflag"/"+flag=N" tokens out of a raw argument list,
// applying each directly to cfg, and returns the remaining tokens (names, @servers, types,
// classes, and ordinary "-flag" options) for flagSet.Parse to handle. Unlike flag.FlagSet, this
// lets a "+trace" or "+short" appear anywhere on the line, interleaved with positional arguments,
// the way dig accepts them - flagSet.Parse alone would stop scanning for flags at the first
// positional (non-dash) argument and leave "+trace" to be mistaken for a query name.
func splitPlusArgs(args []string) ([]string, error) {
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.HasPrefix(arg, "+") {
			rest = append(rest, arg)
			continue
		}
		if err := applyPlusArg(arg[1:]); err != nil {
			return nil, err
		}
	}
	return rest, nil
}

// applyPlusArg handles one "+"-prefixed token's worth of the dig(1) subset SPEC_FULL.md §4.9
// names: trace, short, tcp, norecurse/recurse, ignore, nssearch, timeout=N, retry=N - each with a
// "no"-prefixed negation except the two "=N" value options.
func applyPlusArg(tok string) error {
	name, value, hasValue := strings.Cut(tok, "=")
	switch name {
	case "trace":
		cfg.trace = true
	case "notrace":
		cfg.trace = false
	case "short":
		cfg.short = true
	case "noshort":
		cfg.short = false
	case "tcp":
		cfg.tcp = true
	case "notcp":
		cfg.tcp = false
	case "recurse":
		cfg.recurse = true
	case "norecurse":
		cfg.recurse = false
	case "ignore":
		cfg.ignoreTC = true
	case "noignore":
		cfg.ignoreTC = false
	case "nssearch":
		cfg.nsSearchOnly = true
	case "nonssearch":
		cfg.nsSearchOnly = false
	case "timeout":
		if !hasValue {
			return fmt.Errorf("+timeout requires a value, e.g. +timeout=5")
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("+timeout=%s: %w", value, err)
		}
		cfg.timeout = n
	case "retry":
		if !hasValue {
			return fmt.Errorf("+retry requires a value, e.g. +retry=3")
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("+retry=%s: %w", value, err)
		}
		cfg.retries = n
	default:
		return fmt.Errorf("unrecognized option %q", "+"+tok)
	}
	return nil
}

// parseCommandLine sets up the flags-to-config mapping and parses args. It starts from scratch
// each call so test wrappers can invoke mainExecute repeatedly within one process.
func parseCommandLine(args []string) error {
	flagSet.BoolVar(&cfg.help, "h", false, "Print usage message to Stdout then exit(0)")
	flagSet.BoolVar(&cfg.version, "version", false, "Print version and exit")
	flagSet.BoolVar(&cfg.short, "short", false, "Print only the ANSWER section of a successful response")
	flagSet.BoolVar(&cfg.debug, "d", false, "Emit structured diagnostic logging to stderr")
	flagSet.BoolVar(&cfg.gops, "gops", false, "Start the github.com/google/gops diagnostic agent")

	flagSet.StringVar(&cfg.resolvConfPath, "resolv-conf", "/etc/resolv.conf", "Path to a resolv.conf-format `file`")
	flagSet.Var(&cfg.servers, "ns", "Name`server` to query (repeatable); overrides resolv.conf")
	flagSet.StringVar(&cfg.domain, "domain", "", "Fixed search `domain` override (resolv.conf \"domain\")")
	flagSet.IntVar(&cfg.ndots, "ndots", 0, "`N`dots threshold; 0 means use resolv.conf's value")
	flagSet.IntVar(&cfg.rrLimit, "rr-limit", 0, "Zone transfer RR `count` cap; 0 means unlimited")
	flagSet.StringVar(&cfg.bestServerAlgo, "best-server-algorithm", "traditional",
		"Server-outcome tracking `algorithm`: \"traditional\" or \"latency\" (servers are still tried in list order)")

	flagSet.BoolVar(&cfg.recurse, "recurse", true, "Set the RD bit on outbound queries")
	flagSet.BoolVar(&cfg.aaOnly, "aa-only", false, "Query with the AA bit set")
	flagSet.BoolVar(&cfg.ad, "ad", false, "Set the AD bit (request authenticated data)")
	flagSet.BoolVar(&cfg.cd, "cd", false, "Set the CD bit (disable DNSSEC validation upstream)")
	flagSet.BoolVar(&cfg.dnssec, "dnssec", false, "Set the DO bit and request DNSSEC records")
	flagSet.BoolVar(&cfg.tcp, "tcp", false, "Use TCP for the initial query instead of UDP")
	flagSet.BoolVar(&cfg.ignoreTC, "ignore-tc", false, "Don't escalate to TCP on a truncated response")
	flagSet.BoolVar(&cfg.trace, "trace", false, "Chase delegations from the root, dig-style")
	flagSet.BoolVar(&cfg.nsSearchOnly, "ns-search-only", false, "Chase NS delegations without re-querying the final answer type")
	flagSet.BoolVar(&cfg.servfailStops, "servfail-stops", false, "Treat SERVFAIL as reason to skip to the next server immediately")
	flagSet.BoolVar(&cfg.bestEffort, "best-effort", false, "Tolerate malformed responses instead of failing the lookup")
	flagSet.BoolVar(&cfg.defname, "defname", false, "Force an absolute lookup, skipping search-list qualification")

	flagSet.IntVar(&cfg.retries, "retries", 0, "Per-lookup `retry` budget, spent before rotating to the next server; 0 means use the engine default")
	flagSet.IntVar(&cfg.timeout, "timeout", 0, "Per-query timeout in `seconds`; 0 means use the engine default")
	flagSet.IntVar(&cfg.udpSize, "udp-size", 0, "EDNS0 UDP payload `size`; 0 means no OPT record unless -dnssec")
	flagSet.StringVar(&cfg.subnet, "subnet", "", "Synthesize an EDNS Client Subnet option from this `CIDR`, dig +subnet style")

	flagSet.UintVar(&cfg.ixfrSerial, "ixfr-serial", 0, "Base `serial` for an IXFR query")

	flagSet.StringVar(&cfg.tsigName, "tsig-name", "", "TSIG key owner `name`")
	flagSet.StringVar(&cfg.tsigAlgorithm, "tsig-algorithm", "", "TSIG `algorithm`, e.g. hmac-sha256")
	flagSet.StringVar(&cfg.tsigSecret, "tsig-secret", "", "TSIG `secret`, base64")

	flagSet.StringVar(&cfg.setuidName, "setuid", "", "Drop privilege to this `user` after startup")
	flagSet.StringVar(&cfg.setgidName, "setgid", "", "Drop privilege to this `group` after startup")
	flagSet.StringVar(&cfg.chrootDir, "chroot", "", "chroot(2) to this `dir` after startup")

	rest, err := splitPlusArgs(args[1:])
	if err != nil {
		fmt.Fprintln(flagSet.Output(), err)
		return err
	}
	return flagSet.Parse(rest)
}
