// Package wait provides the bounded polling primitive used for every
// explicit wait on the live page.
package wait

import (
	"context"
	"time"
)

// DefaultInterval is used when Until is given a non-positive interval.
const DefaultInterval = 100 * time.Millisecond

// Until evaluates cond immediately and then every interval until it
// returns true, the timeout elapses or ctx is done. It reports whether
// cond was satisfied.
func Until(ctx context.Context, cond func() bool, timeout, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if cond() {
		return true
	}
	if timeout <= 0 {
		return false
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			// one last look so a change landing on the deadline is not lost
			return cond()
		case <-ticker.C:
			if cond() {
				return true
			}
		}
	}
}
