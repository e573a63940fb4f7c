package engine

import "fmt"

const me = "engine: "

// ExitCode mirrors SPEC_FULL.md §6.3.
type ExitCode int

const (
	ExitNormal          ExitCode = 0 // Including NXDOMAIN
	ExitUsage           ExitCode = 1
	ExitRRLimit         ExitCode = 7
	ExitBatchFailure    ExitCode = 8
	ExitNoServerReached ExitCode = 9
	ExitInternal        ExitCode = 10
)

// Result is returned by Run/Shutdown and summarizes the engine's exit status. ExitCode is
// "ratcheted" - it only ever increases in severity over the course of a run (§7 Propagation
// policy), except that ExitNormal never displaces a more specific code already set.
type Result struct {
	ExitCode ExitCode
	Err      error // The error that raised ExitCode to its current value; nil while ExitCode is ExitNormal
}

// ratchet raises the Result's exit code if the candidate is more severe, following the ordering
// Normal < NoServerReached < RRLimit < BatchFailure < Usage < Internal. That ordering is a
// judgment call - the spec does not define relative severity across these codes, only their
// individual meaning - but Internal/Usage (process cannot do its job at all) should never be
// masked by a more pedestrian per-lookup failure, and a per-lookup failure should never be erased
// by a later, unrelated success.
func (r *Result) ratchet(code ExitCode, err error) {
	rank := func(c ExitCode) int {
		switch c {
		case ExitNormal:
			return 0
		case ExitNoServerReached:
			return 1
		case ExitRRLimit:
			return 2
		case ExitBatchFailure:
			return 3
		case ExitUsage:
			return 4
		case ExitInternal:
			return 5
		}
		return 0
	}
	if rank(code) > rank(r.ExitCode) {
		r.ExitCode = code
		if err != nil {
			r.Err = err
		}
	}
}

// fatalf is a convenience wrapper matching the "me + fmt.Errorf" idiom used throughout this
// module's ambient stack.
func fatalf(format string, args ...interface{}) error {
	return fmt.Errorf(me+format, args...)
}
