// Package addrresolve isolates the one blocking call the engine makes outside its event loop: a
// server name given on the command line (rather than an address) must be turned into an IP address
// using the host's stub resolver. SPEC_FULL.md §5 carves this out explicitly as the one operation
// that is allowed to block a helper goroutine rather than round-trip through the event channel,
// since net.Resolver has no non-blocking mode and shelling out to the engine's own DNS transport to
// resolve its own server names would be circular.
package addrresolve

import (
	"context"
	"fmt"
	"net"
)

// Resolve turns a server name into a dialable address. If name is already a literal IP address (the
// overwhelmingly common case - most callers pass "8.8.8.8" or "::1") it is returned unchanged
// without touching the network. Otherwise it is looked up via net.DefaultResolver, and the first
// address returned wins.
func Resolve(ctx context.Context, name string) (string, error) {
	if ip := net.ParseIP(name); ip != nil {
		return name, nil
	}
	addrs, err := net.DefaultResolver.LookupHost(ctx, name)
	if err != nil {
		return "", fmt.Errorf("addrresolve: %q: %w", name, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("addrresolve: %q: no addresses found", name)
	}
	return addrs[0], nil
}
