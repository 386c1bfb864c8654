package zellij

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBin writes a script that records its arguments, standing in for the
// zellij binary.
func stubBin(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "calls.txt")
	bin := filepath.Join(dir, "zellij")
	script := "#!/bin/sh\necho \"$@\" >> \"$ACTIONS_OUT\"\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	t.Setenv("ACTIONS_OUT", out)
	return bin, out
}

func waitForCall(t *testing.T, out string) string {
	t.Helper()
	var data []byte
	require.Eventually(t, func() bool {
		var err error
		data, err = os.ReadFile(out)
		return err == nil && len(data) > 0
	}, 5*time.Second, 10*time.Millisecond)
	return strings.TrimSpace(string(data))
}

func TestFocusPane_InvokesFocusAction(t *testing.T) {
	bin, out := stubBin(t)
	a := NewActions(bin)

	require.NoError(t, a.FocusPane(7))
	assert.Equal(t, "action focus-pane-with-id terminal:7", waitForCall(t, out))
}

func TestSwitchTab_UsesOneBasedPositions(t *testing.T) {
	bin, out := stubBin(t)
	a := NewActions(bin)

	require.NoError(t, a.SwitchTab(0))
	assert.Equal(t, "action go-to-tab 1", waitForCall(t, out))
}

func TestRun_MissingBinaryReturnsError(t *testing.T) {
	a := NewActions(filepath.Join(t.TempDir(), "no-such-zellij"))
	assert.Error(t, a.FocusPane(1))
}

func TestNewActions_DefaultBin(t *testing.T) {
	a := NewActions("")
	assert.Equal(t, "zellij", a.bin)
}
