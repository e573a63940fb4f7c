/*
Package bestserver decides, for one Lookup's server list, which server digq should try next and
records how each attempt went. engine/setup.go builds one Manager per Lookup (newBestServerManager)
from the Servers a Lookup was seeded or follow-up-generated with; engine/lifecycle.go and
engine/response.go call back into it as each Query resolves or times out.

What a Server represents is opaque to this package - here it's engine.Server (a hostname or address,
optionally with a port), wrapped in engine.bsServer to satisfy the Name() method this package
requires without colliding with Server's own exported Name field.

Usage, as engine/setup.go, engine/lifecycle.go and engine/response.go do it:

 mgr, _ := bestserver.NewTraditional(bestserver.TraditionalConfig{}, ifList) // one per Lookup
 ...
 l.bestServers.Result(bsServer{q.srv}, success, time.Now(), rtt)  // report how the Query went

The engine only reports outcomes through Result(); it does not call Best(). It tries a Lookup's
servers in list order, so the Manager's 'best' choice does not steer which server is dialled.

A call to Result() for the current best server triggers reassessment. Best() returns the same
server for as long as no intervening Result() call has been made for it.

Two algorithms are available, selected by digq's "-best-server-algorithm" flag via
newBestServerManager: NewLatency() and NewTraditional(). The package is structured so a third could
be added without touching the Manager interface.

The 'latency' algorithm gravitates towards the lowest-latency server by opportunistically sampling
all servers to collect performance stats. The selection algorithm is:

 - the first server on the list starts as the 'best' server

 - a reassessment occurs if any of the following conditions are true:
    o the current 'best' server is given an unsuccessful result
    o the configured reassessment timer has expired
    o the configured number of Result() calls have been reached

Reassessment chooses the server with the lowest weighted average latency to become the new 'best'
server.

To ensure there is latency data for all servers, after a Result() call, Best() will periodically
return a non-'best' server to gather performance information for that server. The default sample
rate at which non-'best' servers are returned is approximately 5% of the time.

Servers which are unsuccessful as indicated by Result() calls are excluded from this sampling
process for a configured time period.

The expectation is a relatively small server list - much of the selection algorithm is a simple
linear search of all entries and thus O(n). Ten to twenty servers is reasonable; thousands are not -
which matches a resolv.conf-sized server list, not an arbitrary pool.

The 'traditional' implementation mimics nameserver selection by res_send(3) as described in
RESOLVER(3): the first server is used until it fails, then the next, and so on, wrapping back to the
first once the list is exhausted. engine/lifecycle.go's retry/rotate decision (queryTimedOut)
follows the same "use until it fails, then the next" order on its own, without wrapping back, and
spec.md's worked examples (§8 scenario 2) are written against that order.

Multiple goroutines can safely invoke all the Manager interface methods concurrently, though in
digq's case only the engine's own Run goroutine and the helper goroutines it spawns ever do so.
*/
package bestserver
