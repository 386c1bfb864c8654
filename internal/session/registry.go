package session

import (
	"log/slog"
	"time"

	"github.com/asheshgoplani/deckline/internal/logging"
	"github.com/asheshgoplani/deckline/internal/settings"
	"github.com/asheshgoplani/deckline/internal/topology"
)

var regLog = logging.ForComponent(logging.CompSession)

// doneTimeout is how long Done/AgentDone linger before aging to idle.
const doneTimeout = 30 * time.Second

// Registry owns this instance's pane -> session map. It is only ever touched
// from the bar's single update loop, so it carries no locking.
type Registry struct {
	sessions map[uint32]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uint32]*Session)}
}

// Get returns the session for a pane, or nil.
func (r *Registry) Get(pane uint32) *Session {
	return r.sessions[pane]
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// Snapshot returns a value copy of the session map for a sync broadcast.
func (r *Registry) Snapshot() map[uint32]Session {
	out := make(map[uint32]Session, len(r.sessions))
	for pane, s := range r.sessions {
		out[pane] = *s
	}
	return out
}

// ApplyResult reports what a lifecycle event did, so the caller can dispatch
// the per-event side effects (alert gating) that do not belong in the registry.
type ApplyResult struct {
	Removed       bool
	Activity      Activity
	BecameWaiting bool

	// Tab binding at event time, from the locator. TabKnown is false when the
	// pane was not in the current topology.
	TabIndex int
	TabName  string
	TabKnown bool
}

// ApplyHook runs the activity state machine for one lifecycle payload and
// writes the result back to the registry. Flash side effects are applied here
// because the flash invariant (a deadline exists only while its session is
// waiting) is maintained at the transition, not on ticks.
func (r *Registry) ApplyHook(p HookPayload, fl *Flasher, flashMode settings.FlashMode, loc *topology.Locator, now time.Time) ApplyResult {
	if p.HookEvent == "SessionEnd" {
		delete(r.sessions, p.PaneID)
		fl.Clear(p.PaneID)
		regLog.Debug("session_ended", slog.Uint64("pane", uint64(p.PaneID)))
		return ApplyResult{Removed: true}
	}

	res := ApplyResult{TabIndex: NoTab}
	if b, ok := loc.Lookup(p.PaneID); ok {
		res.TabIndex = b.TabIndex
		res.TabName = b.TabName
		res.TabKnown = true
	}

	// Notification is informational: refresh the timestamp of an existing
	// session, keep its activity, and never create one.
	if p.HookEvent == "Notification" {
		if s, ok := r.sessions[p.PaneID]; ok {
			s.LastEventTS = unixSeconds(now)
			res.Activity = s.Activity
		}
		return res
	}

	s, ok := r.sessions[p.PaneID]
	if !ok {
		s = &Session{
			SessionID: p.SessionID,
			PaneID:    p.PaneID,
			Activity:  Activity{Kind: KindInit},
			TabIndex:  NoTab,
		}
		r.sessions[p.PaneID] = s
	}

	activity := ActivityFor(p.HookEvent, p.ToolName)
	res.Activity = activity

	if activity.Kind == KindWaiting {
		fl.Mark(p.PaneID, flashMode, now)
		res.BecameWaiting = true
	} else {
		// Clear even if the pane only just transitioned away from waiting.
		fl.Clear(p.PaneID)
	}

	s.Activity = activity
	s.LastEventTS = unixSeconds(now)
	if p.SessionID != "" {
		s.SessionID = p.SessionID
	}
	if p.CWD != "" {
		s.CWD = p.CWD
	}
	if res.TabKnown {
		s.TabIndex = res.TabIndex
		s.TabName = res.TabName
	}

	return res
}

// RefreshBindings restamps the cached tab binding of every session from the
// locator. Misses leave the cached binding untouched.
func (r *Registry) RefreshBindings(loc *topology.Locator) {
	for _, s := range r.sessions {
		if b, ok := loc.Lookup(s.PaneID); ok {
			s.TabIndex = b.TabIndex
			s.TabName = b.TabName
		}
	}
}

// PruneDead removes sessions whose panes left the topology, along with their
// flash deadlines. Called on every snapshot rebuild.
func (r *Registry) PruneDead(loc *topology.Locator, fl *Flasher) {
	for pane := range r.sessions {
		if !loc.Contains(pane) {
			delete(r.sessions, pane)
			fl.Clear(pane)
		}
	}
}

// AgeTerminal downgrades Done/AgentDone sessions to idle once they have sat
// unchanged for the done timeout. Called on the periodic tick.
func (r *Registry) AgeTerminal(now time.Time) {
	for _, s := range r.sessions {
		switch s.Activity.Kind {
		case KindDone, KindAgentDone:
			if SecondsSince(now, s.LastEventTS) >= int64(doneTimeout.Seconds()) {
				s.Activity = Activity{Kind: KindIdle}
			}
		}
	}
}

// Merge reconciles a foreign session set into this registry with a
// last-writer-wins rule on the event timestamp: an incoming record is adopted
// only when no local record exists or the incoming one is strictly newer.
// Topology stays locally authoritative, so adopted records are restamped from
// this instance's locator. Colliding timestamps between genuinely concurrent
// writers resolve to whichever merge runs; that non-determinism is inherited
// from the wall-clock protocol and deliberately not tie-broken.
func (r *Registry) Merge(incoming map[uint32]Session, loc *topology.Locator) {
	for pane, in := range incoming {
		if local, ok := r.sessions[pane]; ok && in.LastEventTS <= local.LastEventTS {
			continue
		}
		adopted := in
		adopted.PaneID = pane
		if b, ok := loc.Lookup(pane); ok {
			adopted.TabIndex = b.TabIndex
			adopted.TabName = b.TabName
		}
		r.sessions[pane] = &adopted
	}
}

// BestForTab returns the highest-priority session whose cached tab binding
// matches the given tab position, or nil. Priority ties resolve in map order.
func (r *Registry) BestForTab(position int) *Session {
	var best *Session
	for _, s := range r.sessions {
		if !s.OnTab(position) {
			continue
		}
		if best == nil || s.Activity.Priority() > best.Activity.Priority() {
			best = s
		}
	}
	return best
}

// WaitingOnTab returns a waiting session on the given tab, or nil.
func (r *Registry) WaitingOnTab(position int) *Session {
	for _, s := range r.sessions {
		if s.OnTab(position) && s.Activity.Kind == KindWaiting {
			return s
		}
	}
	return nil
}

// AnyFlashOnTab reports whether any session on the tab is in the bright
// phase of an active flash.
func (r *Registry) AnyFlashOnTab(position int, fl *Flasher, now time.Time) bool {
	for _, s := range r.sessions {
		if s.OnTab(position) && fl.Bright(s.PaneID, now) {
			return true
		}
	}
	return false
}
