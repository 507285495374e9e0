package browser

import (
	"math/rand"
	"time"
)

// RandomDelay pauses for a random duration between min and max milliseconds.
func RandomDelay(min, max int) {
	if max <= 0 {
		return
	}
	if min >= max {
		time.Sleep(time.Duration(max) * time.Millisecond)
		return
	}
	duration := time.Duration(rand.Intn(max-min+1)+min) * time.Millisecond
	time.Sleep(duration)
}

// PauseFunc returns a RandomDelay bound to the given range, or nil when
// the range disables pausing.
func PauseFunc(minMs, maxMs int) func() {
	if maxMs <= 0 {
		return nil
	}
	return func() { RandomDelay(minMs, maxMs) }
}
