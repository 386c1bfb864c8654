package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/deckline/internal/settings"
	"github.com/asheshgoplani/deckline/internal/topology"
)

func testLocator() *topology.Locator {
	loc := topology.NewLocator()
	loc.Rebuild(topology.Snapshot{
		Tabs: []topology.Tab{
			{Position: 0, Name: "work", Active: true},
			{Position: 1, Name: "scratch"},
		},
		Panes: []topology.Pane{
			{ID: 1, TabIndex: 0},
			{ID: 2, TabIndex: 1},
			{ID: 9, TabIndex: 1, IsPlugin: true},
		},
	})
	return loc
}

func hook(pane uint32, event, tool string) HookPayload {
	return HookPayload{PaneID: pane, HookEvent: event, ToolName: tool, SessionID: "sid"}
}

func TestApplyHook_CreatesAndBinds(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	res := r.ApplyHook(hook(1, "SessionStart", ""), fl, settings.FlashOnce, loc, base)
	require.True(t, res.TabKnown)
	assert.Equal(t, 0, res.TabIndex)
	assert.Equal(t, "work", res.TabName)
	assert.False(t, res.Removed)
	assert.False(t, res.BecameWaiting)

	s := r.Get(1)
	require.NotNil(t, s)
	assert.Equal(t, KindInit, s.Activity.Kind)
	assert.Equal(t, "sid", s.SessionID)
	assert.Equal(t, 0, s.TabIndex)
	assert.Equal(t, base.Unix(), s.LastEventTS)
}

func TestApplyHook_UnknownPaneKeepsNoTab(t *testing.T) {
	r := NewRegistry()
	res := r.ApplyHook(hook(42, "SessionStart", ""), NewFlasher(), settings.FlashOnce, testLocator(), base)
	assert.False(t, res.TabKnown)
	assert.Equal(t, NoTab, r.Get(42).TabIndex)
}

func TestApplyHook_WaitingMarksFlashAndReports(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	res := r.ApplyHook(hook(1, "PermissionRequest", ""), fl, settings.FlashOnce, loc, base)
	assert.True(t, res.BecameWaiting)
	assert.True(t, fl.Active(1, base))
	assert.Equal(t, KindWaiting, r.Get(1).Activity.Kind)

	// Any non-waiting transition clears the flash again.
	r.ApplyHook(hook(1, "UserPromptSubmit", ""), fl, settings.FlashOnce, loc, base.Add(time.Second))
	assert.False(t, fl.Active(1, base.Add(time.Second)))
	assert.Equal(t, KindThinking, r.Get(1).Activity.Kind)
}

func TestApplyHook_WaitingWithFlashOff(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()

	res := r.ApplyHook(hook(1, "PermissionRequest", ""), fl, settings.FlashOff, testLocator(), base)
	assert.True(t, res.BecameWaiting, "alert gating is independent of the flash policy")
	assert.False(t, fl.Active(1, base))
}

func TestApplyHook_NotificationRefreshesTimestampOnly(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(1, "PreToolUse", "Bash"), fl, settings.FlashOnce, loc, base)
	later := base.Add(time.Minute)
	res := r.ApplyHook(hook(1, "Notification", ""), fl, settings.FlashOnce, loc, later)

	s := r.Get(1)
	assert.Equal(t, Activity{Kind: KindTool, Tool: "Bash"}, s.Activity)
	assert.Equal(t, later.Unix(), s.LastEventTS)
	assert.Equal(t, s.Activity, res.Activity)
}

func TestApplyHook_NotificationForUnknownPaneCreatesNothing(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()

	res := r.ApplyHook(hook(5, "Notification", ""), fl, settings.FlashOnce, testLocator(), base)
	assert.Nil(t, r.Get(5))
	assert.Zero(t, r.Len())
	assert.Equal(t, Activity{}, res.Activity)
	assert.False(t, res.Removed)
}

func TestApplyHook_SessionEndRemoves(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(1, "PermissionRequest", ""), fl, settings.FlashPersist, loc, base)
	res := r.ApplyHook(hook(1, "SessionEnd", ""), fl, settings.FlashPersist, loc, base)

	assert.True(t, res.Removed)
	assert.Nil(t, r.Get(1))
	assert.False(t, fl.Active(1, base))
}

func TestApplyHook_SessionEndForUnknownPaneIsNoop(t *testing.T) {
	r := NewRegistry()
	res := r.ApplyHook(hook(7, "SessionEnd", ""), NewFlasher(), settings.FlashOnce, testLocator(), base)
	assert.True(t, res.Removed)
	assert.Zero(t, r.Len())
}

func TestAgeTerminal(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(1, "Stop", ""), fl, settings.FlashOnce, loc, base)
	r.ApplyHook(hook(2, "SubagentStop", ""), fl, settings.FlashOnce, loc, base)

	r.AgeTerminal(base.Add(doneTimeout - time.Second))
	assert.Equal(t, KindDone, r.Get(1).Activity.Kind)

	r.AgeTerminal(base.Add(doneTimeout))
	assert.Equal(t, KindIdle, r.Get(1).Activity.Kind)
	assert.Equal(t, KindIdle, r.Get(2).Activity.Kind)
}

func TestPruneDead_DropsPanesOutsideTopology(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(1, "PermissionRequest", ""), fl, settings.FlashPersist, loc, base)
	r.ApplyHook(hook(42, "SessionStart", ""), fl, settings.FlashOnce, loc, base)

	r.PruneDead(loc, fl)
	assert.NotNil(t, r.Get(1))
	assert.Nil(t, r.Get(42))
}

func TestRefreshBindings_KeepsStaleOnMiss(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(2, "SessionStart", ""), fl, settings.FlashOnce, loc, base)
	require.Equal(t, 1, r.Get(2).TabIndex)

	moved := topology.NewLocator()
	moved.Rebuild(topology.Snapshot{
		Tabs:  []topology.Tab{{Position: 0, Name: "merged"}},
		Panes: []topology.Pane{{ID: 2, TabIndex: 0}},
	})
	r.RefreshBindings(moved)
	assert.Equal(t, 0, r.Get(2).TabIndex)
	assert.Equal(t, "merged", r.Get(2).TabName)

	// A locator that no longer knows the pane leaves the cache untouched.
	r.RefreshBindings(topology.NewLocator())
	assert.Equal(t, 0, r.Get(2).TabIndex)
}

func TestMerge_LastWriterWins(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(1, "PreToolUse", "Bash"), fl, settings.FlashOnce, loc, base)
	local := r.Get(1)

	// Older and equal timestamps lose to the local record.
	r.Merge(map[uint32]Session{
		1: {PaneID: 1, Activity: Activity{Kind: KindDone}, LastEventTS: local.LastEventTS},
	}, loc)
	assert.Equal(t, KindTool, r.Get(1).Activity.Kind)

	// A strictly newer record wins and is restamped from the local locator.
	r.Merge(map[uint32]Session{
		1: {PaneID: 1, Activity: Activity{Kind: KindDone}, LastEventTS: local.LastEventTS + 1, TabIndex: 5, TabName: "foreign"},
		2: {PaneID: 2, Activity: Activity{Kind: KindThinking}, LastEventTS: local.LastEventTS},
	}, loc)
	assert.Equal(t, KindDone, r.Get(1).Activity.Kind)
	assert.Equal(t, 0, r.Get(1).TabIndex)
	assert.Equal(t, "work", r.Get(1).TabName)

	// Unknown panes are adopted outright.
	require.NotNil(t, r.Get(2))
	assert.Equal(t, 1, r.Get(2).TabIndex)
}

func TestBestForTab_PicksHighestPriority(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(1, "Stop", ""), fl, settings.FlashOnce, loc, base)
	assert.Equal(t, uint32(1), r.BestForTab(0).PaneID)

	// A higher-priority session on the same tab displaces it.
	r.Merge(map[uint32]Session{
		3: {PaneID: 3, Activity: Activity{Kind: KindWaiting}, LastEventTS: base.Unix(), TabIndex: 0},
	}, loc)
	assert.Equal(t, uint32(3), r.BestForTab(0).PaneID)

	assert.Nil(t, r.BestForTab(7))
}

func TestWaitingOnTab(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(1, "PreToolUse", "Bash"), fl, settings.FlashOnce, loc, base)
	assert.Nil(t, r.WaitingOnTab(0))

	r.ApplyHook(hook(1, "PermissionRequest", ""), fl, settings.FlashOnce, loc, base)
	w := r.WaitingOnTab(0)
	require.NotNil(t, w)
	assert.Equal(t, uint32(1), w.PaneID)
}

func TestAnyFlashOnTab(t *testing.T) {
	r := NewRegistry()
	fl := NewFlasher()
	loc := testLocator()

	r.ApplyHook(hook(1, "PermissionRequest", ""), fl, settings.FlashPersist, loc, base)
	assert.True(t, r.AnyFlashOnTab(0, fl, base))
	assert.False(t, r.AnyFlashOnTab(0, fl, base.Add(250*time.Millisecond)), "dark blink phase")
	assert.False(t, r.AnyFlashOnTab(1, fl, base))
}

func TestSecondsSince_NeverNegative(t *testing.T) {
	assert.Zero(t, SecondsSince(base, base.Unix()+100))
	assert.Equal(t, int64(5), SecondsSince(base.Add(5*time.Second), base.Unix()))
}
