// Package notify rate-limits and dispatches the desktop alert fired when a
// session starts waiting for permission. Its contract ends at "should an
// alert fire now, and with what already-escaped command string"; execution is
// delegated to a Runner collaborator.
package notify

import (
	"time"

	"golang.org/x/time/rate"
)

// UntrackedKey is the cooldown key for panes with no known tab.
const UntrackedKey = ^uint32(0)

// Cooldown is the default alert window per cooldown key.
const Cooldown = 10 * time.Second

// Throttle allows at most one alert per cooldown key per window. The token is
// taken before dispatch, so a burst of waiting transitions cannot double-fire.
type Throttle struct {
	window   time.Duration
	limiters map[uint32]*rate.Limiter
}

// NewThrottle returns a throttle with the given cooldown window.
func NewThrottle(window time.Duration) *Throttle {
	if window <= 0 {
		window = Cooldown
	}
	return &Throttle{
		window:   window,
		limiters: make(map[uint32]*rate.Limiter),
	}
}

// Allow reserves the key's token if one is available.
func (t *Throttle) Allow(key uint32) bool {
	lim, ok := t.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(t.window), 1)
		t.limiters[key] = lim
	}
	return lim.Allow()
}

// Prune drops limiters whose key is no longer valid. Entries for vanished
// tabs are reclaimed opportunistically rather than cancelled explicitly.
func (t *Throttle) Prune(valid func(key uint32) bool) {
	for key := range t.limiters {
		if key != UntrackedKey && !valid(key) {
			delete(t.limiters, key)
		}
	}
}
