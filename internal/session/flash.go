package session

import (
	"math"
	"time"

	"github.com/asheshgoplani/deckline/internal/settings"
)

const (
	// FlashDuration is how long a "once" flash stays active.
	FlashDuration = 2000 * time.Millisecond

	// flashForever is the deadline sentinel for "persist" flashes; they are
	// cleared only by an activity change, never by the clock.
	flashForever = int64(math.MaxInt64)

	// blinkQuantum is the on/off period of the flash blink.
	blinkQuantum = int64(250)

	// FastTick is the render cadence while any flash deadline is active.
	FastTick = 250 * time.Millisecond

	// SlowTick is the render cadence otherwise.
	SlowTick = time.Second
)

// Flasher tracks time-bounded attention highlights per pane, independent of
// the activity value stored in the registry.
type Flasher struct {
	deadlines map[uint32]int64 // pane id -> expiry in unix ms
}

// NewFlasher returns an empty flash board.
func NewFlasher() *Flasher {
	return &Flasher{deadlines: make(map[uint32]int64)}
}

// Mark applies the flash policy for a pane that just entered waiting.
// Only the moment of entering waiting is policy-relevant; ticks never call it.
func (f *Flasher) Mark(pane uint32, mode settings.FlashMode, now time.Time) {
	switch mode {
	case settings.FlashOnce:
		f.deadlines[pane] = unixMillis(now) + FlashDuration.Milliseconds()
	case settings.FlashPersist:
		f.deadlines[pane] = flashForever
	case settings.FlashOff:
		// no highlight
	}
}

// Clear drops the pane's deadline, if any.
func (f *Flasher) Clear(pane uint32) {
	delete(f.deadlines, pane)
}

// Active reports whether the pane currently holds an unexpired deadline.
func (f *Flasher) Active(pane uint32, now time.Time) bool {
	deadline, ok := f.deadlines[pane]
	return ok && unixMillis(now) < deadline
}

// AnyActive reports whether any pane holds an unexpired deadline.
func (f *Flasher) AnyActive(now time.Time) bool {
	ms := unixMillis(now)
	for _, deadline := range f.deadlines {
		if ms < deadline {
			return true
		}
	}
	return false
}

// Bright reports whether the pane's flash is in the bright phase of its
// blink. Computed fresh from the clock on every render; never cached.
func (f *Flasher) Bright(pane uint32, now time.Time) bool {
	if !f.Active(pane, now) {
		return false
	}
	return (unixMillis(now)/blinkQuantum)%2 == 0
}

// Expire drops every deadline that has passed.
func (f *Flasher) Expire(now time.Time) {
	ms := unixMillis(now)
	for pane, deadline := range f.deadlines {
		if ms >= deadline {
			delete(f.deadlines, pane)
		}
	}
}

// TickInterval selects the render tick cadence. This is the only place the
// scheduling rate is decided; calling it repeatedly is harmless.
func (f *Flasher) TickInterval(now time.Time) time.Duration {
	if f.AnyActive(now) {
		return FastTick
	}
	return SlowTick
}
