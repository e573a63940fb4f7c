// +build unix !windows

package osutil

import (
	"os"
	"os/signal"
	"syscall"
)

// SignalNotify sends all the main Unix signals to the supplied channel. cmd/digq/main.go reads
// from this channel in a loop: SIGUSR1 prints the engine's socket/peak-concurrency report without
// stopping the run (see IsSignalUSR1), anything else cancels the run's context.
func SignalNotify(c chan os.Signal) {
	signal.Notify(c, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGUSR1)
}

// IsSignalUSR1 reports whether s is SIGUSR1, digq's "print a progress report without stopping"
// signal - useful for peeking at a long-running zone transfer's socket occupancy.
func IsSignalUSR1(s os.Signal) bool {
	return s == syscall.SIGUSR1
}
