// Package resolvconf loads /etc/resolv.conf (or an equivalent file) into the engine.ResolverConfig
// the engine needs: default servers, search list, ndots and an optional fixed domain override. It
// delegates the actual parsing to github.com/miekg/dns, then reconciles a handful of values that
// the library leaves as platform-dependent defaults.
package resolvconf

import (
	"fmt"

	"github.com/miekg/dns"

	"github.com/markdingo/digq/internal/constants"
)

const me = "resolvconf: "

// Config is the subset of engine.ResolverConfig this package produces. It's a plain value rather
// than the engine type itself so this package doesn't need to import engine (which would be a
// layering inversion - the engine is the consumer here, not a dependency).
type Config struct {
	Servers []string
	Search  []string
	Domain  string
	Ndots   int
}

// Load parses path (conventionally "/etc/resolv.conf") and returns the resulting Config. "domain"
// and "search" are mutually exclusive per resolv.conf(5); when both are present in the file,
// miekg/dns already resolves that ambiguity by only ever populating Search, so Domain here only
// ever comes from an explicit override supplied by the caller (e.g. digq's "-domain" flag).
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("%sempty resolv.conf path", me)
	}
	cc, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%s%s: %w", me, path, err)
	}

	c := Config{
		Servers: cc.Servers,
		Search:  cc.Search,
		Ndots:   constants.Get().DefaultNdots,
	}

	for _, opt := range cc.Options {
		if n, ok := parseNdots(opt); ok {
			c.Ndots = n
		}
	}

	return c, nil
}

func parseNdots(opt string) (int, bool) {
	const prefix = "ndots:"
	if len(opt) <= len(prefix) || opt[:len(prefix)] != prefix {
		return 0, false
	}
	n := 0
	for _, r := range opt[len(prefix):] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
