/*
Package engine is the asynchronous DNS query engine behind digq. Given a queue of Lookups it
resolves each one by composing queries with github.com/miekg/dns, dispatching them over UDP or TCP
to one or more configured servers, collecting and parsing responses, and driving follow-up lookups
(search-list expansion, +trace NS chasing, truncation retries, IXFR/AXFR streaming) until the queue
is drained.

The engine is single-threaded and cooperative: exactly one goroutine, the one running Engine.Run,
ever touches a Lookup, a Query, or the engine's own bookkeeping. All socket I/O happens in
short-lived helper goroutines that do nothing except perform one blocking operation and post its
outcome back onto the engine's event channel - they never read or write engine state directly. This
mirrors the "one worker thread executes all callbacks, protected by one mutex" model of the
reference implementation without actually needing a mutex, since only one goroutine ever has the
state in scope.

Everything this package does not claim - the DNS wire codec, TSIG signing/verification, DNSSEC
validation, resolv.conf parsing, argument parsing and the human-readable message printer - is
supplied by github.com/miekg/dns and by the digq command (see internal/resolvconf, internal/printer).
*/
package engine
