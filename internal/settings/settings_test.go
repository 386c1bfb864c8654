package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyMode_Cycle(t *testing.T) {
	assert.Equal(t, NotifyUnfocused, NotifyAlways.Cycle())
	assert.Equal(t, NotifyNever, NotifyUnfocused.Cycle())
	assert.Equal(t, NotifyAlways, NotifyNever.Cycle())
}

func TestFlashMode_Cycle(t *testing.T) {
	assert.Equal(t, FlashPersist, FlashOnce.Cycle())
	assert.Equal(t, FlashOff, FlashPersist.Cycle())
	assert.Equal(t, FlashOnce, FlashOff.Cycle())
}

func TestSettings_JSONWireFormat(t *testing.T) {
	data, err := json.Marshal(Default())
	require.NoError(t, err)
	assert.JSONEq(t, `{"notifications":"Always","flash":"Once","elapsed_time":true}`, string(data))
}

func TestParse_RoundTripAllCombinations(t *testing.T) {
	notify := []NotifyMode{NotifyAlways, NotifyUnfocused, NotifyNever}
	flash := []FlashMode{FlashOff, FlashOnce, FlashPersist}
	for _, n := range notify {
		for _, f := range flash {
			for _, e := range []bool{true, false} {
				in := Settings{Notifications: n, Flash: f, ElapsedTime: e}
				data, err := json.Marshal(in)
				require.NoError(t, err)

				out, err := Parse(data)
				require.NoError(t, err)
				assert.Equal(t, in, out)
			}
		}
	}
}

func TestParse_MissingFieldsFallBackToDefaults(t *testing.T) {
	s, err := Parse([]byte(`{"flash":"Persist"}`))
	require.NoError(t, err)
	assert.Equal(t, FlashPersist, s.Flash)
	assert.Equal(t, NotifyAlways, s.Notifications)
	assert.True(t, s.ElapsedTime)
}

func TestParse_UnknownModeNamesFallBackToDefaults(t *testing.T) {
	s, err := Parse([]byte(`{"notifications":"Sometimes","flash":"Twice","elapsed_time":false}`))
	require.NoError(t, err)
	assert.Equal(t, NotifyAlways, s.Notifications)
	assert.Equal(t, FlashOnce, s.Flash)
	assert.False(t, s.ElapsedTime)
}

func TestParse_MalformedJSON(t *testing.T) {
	s, err := Parse([]byte(`{not json`))
	assert.Error(t, err)
	assert.Equal(t, Default(), s)
}
