// +build windows !unix

package osutil

import (
	"os"
)

// SignalNotify is a no-op on Windows, which has no SIGUSR1/SIGHUP equivalent; cmd/digq/main.go
// still reads from the channel it's given, it just never receives anything on this platform.
func SignalNotify(c chan os.Signal) {
}

// IsSignalUSR1 always reports false on Windows - see SignalNotify.
func IsSignalUSR1(s os.Signal) bool {
	return false
}
