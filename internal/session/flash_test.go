package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/asheshgoplani/deckline/internal/settings"
)

// base is an arbitrary instant aligned to an even blink quantum, so Bright
// assertions are deterministic.
var base = time.UnixMilli(1_700_000_000_000)

func TestFlasher_OnceExpiresAfterDuration(t *testing.T) {
	f := NewFlasher()
	f.Mark(1, settings.FlashOnce, base)

	assert.True(t, f.Active(1, base))
	assert.True(t, f.Active(1, base.Add(FlashDuration-time.Millisecond)))
	assert.False(t, f.Active(1, base.Add(FlashDuration)))
}

func TestFlasher_PersistNeverExpires(t *testing.T) {
	f := NewFlasher()
	f.Mark(1, settings.FlashPersist, base)

	assert.True(t, f.Active(1, base.Add(24*time.Hour)))

	f.Expire(base.Add(24 * time.Hour))
	assert.True(t, f.Active(1, base.Add(24*time.Hour)), "expire must not drop persist flashes")

	f.Clear(1)
	assert.False(t, f.Active(1, base))
}

func TestFlasher_OffMarksNothing(t *testing.T) {
	f := NewFlasher()
	f.Mark(1, settings.FlashOff, base)
	assert.False(t, f.Active(1, base))
	assert.False(t, f.AnyActive(base))
}

func TestFlasher_BrightFollowsBlinkPhase(t *testing.T) {
	f := NewFlasher()
	f.Mark(1, settings.FlashPersist, base)

	// base is an even multiple of the 250ms quantum: bright phase.
	assert.True(t, f.Bright(1, base))
	assert.False(t, f.Bright(1, base.Add(250*time.Millisecond)))
	assert.True(t, f.Bright(1, base.Add(500*time.Millisecond)))

	// An inactive pane is never bright, whatever the phase.
	assert.False(t, f.Bright(2, base))
}

func TestFlasher_ExpireSweepsOnlyPassedDeadlines(t *testing.T) {
	f := NewFlasher()
	f.Mark(1, settings.FlashOnce, base)
	f.Mark(2, settings.FlashOnce, base.Add(time.Second))

	f.Expire(base.Add(FlashDuration))
	assert.False(t, f.Active(1, base.Add(FlashDuration)))
	assert.True(t, f.Active(2, base.Add(FlashDuration)))
}

func TestFlasher_TickInterval(t *testing.T) {
	f := NewFlasher()
	assert.Equal(t, SlowTick, f.TickInterval(base))

	f.Mark(1, settings.FlashOnce, base)
	assert.Equal(t, FastTick, f.TickInterval(base))

	// Past the deadline the cadence relaxes even before the sweep runs.
	assert.Equal(t, SlowTick, f.TickInterval(base.Add(FlashDuration)))
}
