package session

import "time"

// NoTab marks a session whose pane is not currently known to the locator.
const NoTab = -1

// Session is the authoritative record for one pane in this instance. Copies
// of it travel to other instances in sync payloads and are reconciled there
// by last-event timestamp.
type Session struct {
	SessionID string   `json:"session_id"`
	PaneID    uint32   `json:"pane_id"`
	Activity  Activity `json:"activity"`

	// Denormalized tab cache, refreshed from topology. TabIndex is NoTab when
	// the pane has never been seen by the locator. Stale values are kept on a
	// locator miss: stale display beats blanking.
	TabName  string `json:"tab_name,omitempty"`
	TabIndex int    `json:"tab_index"`

	// LastEventTS is unix seconds of the most recent lifecycle event.
	LastEventTS int64 `json:"last_event_ts"`

	CWD string `json:"cwd,omitempty"`
}

// OnTab reports whether the session's cached binding matches a tab position.
func (s *Session) OnTab(position int) bool {
	return s.TabIndex != NoTab && s.TabIndex == position
}

// unixSeconds converts a wall-clock instant to unix seconds, saturating at
// zero for clock-before-epoch readings.
func unixSeconds(t time.Time) int64 {
	if s := t.Unix(); s > 0 {
		return s
	}
	return 0
}

// unixMillis converts a wall-clock instant to unix milliseconds, saturating
// at zero.
func unixMillis(t time.Time) int64 {
	if ms := t.UnixMilli(); ms > 0 {
		return ms
	}
	return 0
}

// SecondsSince returns now minus a unix-seconds timestamp, never negative.
func SecondsSince(now time.Time, ts int64) int64 {
	if d := unixSeconds(now) - ts; d > 0 {
		return d
	}
	return 0
}

// HookPayload is the lifecycle event delivered by the hook bridge.
type HookPayload struct {
	SessionID     string `json:"session_id,omitempty"`
	PaneID        uint32 `json:"pane_id"`
	HookEvent     string `json:"hook_event"`
	ToolName      string `json:"tool_name,omitempty"`
	CWD           string `json:"cwd,omitempty"`
	ZellijSession string `json:"zellij_session,omitempty"`
	TermProgram   string `json:"term_program,omitempty"`
}
