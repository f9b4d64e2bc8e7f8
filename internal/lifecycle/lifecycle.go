package lifecycle

import "sync/atomic"

var shuttingDown atomic.Bool

// SetShuttingDown sets the drain flag. Called when SIGTERM/SIGINT is
// received; the health handler reports shutting-down while it is set.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining and should not
// receive new traffic.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}
