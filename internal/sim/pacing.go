package sim

import "time"

// PacingSleep returns how long a call that already took elapsed must still
// wait so that it lasts at least delay. Overruns yield zero.
func PacingSleep(elapsed, delay time.Duration) time.Duration {
	if elapsed >= delay {
		return 0
	}
	return delay - elapsed
}
