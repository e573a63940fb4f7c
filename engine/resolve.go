package engine

import (
	"context"

	"github.com/markdingo/digq/internal/addrresolve"
)

// addrResolveFunc resolves a server name to a dialable address. It exists as a field on Engine
// (rather than a direct call to addrresolve.Resolve) so tests can substitute a synchronous fake
// without touching the network.
type addrResolveFunc func(ctx context.Context, name string) (string, error)

func defaultResolveAddr(ctx context.Context, name string) (string, error) {
	return addrresolve.Resolve(ctx, name)
}
