// Package session owns the per-pane session records of this bar instance:
// the activity state machine driven by assistant lifecycle events, the flash
// deadlines for waiting sessions, and the last-writer-wins merge used to
// reconcile state with other instances.
package session

import (
	"encoding/json"
	"fmt"
)

// ActivityKind is the closed set of session activity states.
type ActivityKind int

const (
	KindIdle ActivityKind = iota
	KindInit
	KindThinking
	KindTool
	KindPrompting
	KindWaiting
	KindNotification
	KindDone
	KindAgentDone
)

var kindNames = map[ActivityKind]string{
	KindIdle:         "idle",
	KindInit:         "init",
	KindThinking:     "thinking",
	KindTool:         "tool",
	KindPrompting:    "prompting",
	KindWaiting:      "waiting",
	KindNotification: "notification",
	KindDone:         "done",
	KindAgentDone:    "agent_done",
}

var kindsByName = func() map[string]ActivityKind {
	m := make(map[string]ActivityKind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k ActivityKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "idle"
}

// Activity is a tagged activity value. Tool is only meaningful for KindTool
// and may be empty there too.
type Activity struct {
	Kind ActivityKind
	Tool string
}

// Priority is a total order over activity kinds, highest first, used to pick
// the session shown for a tab. It ignores the tool payload.
func (a Activity) Priority() int {
	switch a.Kind {
	case KindWaiting:
		return 8
	case KindTool:
		return 7
	case KindThinking:
		return 6
	case KindPrompting:
		return 5
	case KindNotification:
		return 4
	case KindInit:
		return 3
	case KindDone:
		return 2
	case KindAgentDone:
		return 1
	default:
		return 0
	}
}

type activityWire struct {
	Kind string `json:"kind"`
	Tool string `json:"tool,omitempty"`
}

// MarshalJSON encodes the activity for sync payloads.
func (a Activity) MarshalJSON() ([]byte, error) {
	return json.Marshal(activityWire{Kind: a.Kind.String(), Tool: a.Tool})
}

// UnmarshalJSON decodes an activity; unknown kinds degrade to idle so a
// foreign record from a newer peer never fails the merge.
func (a *Activity) UnmarshalJSON(data []byte) error {
	var w activityWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("activity: %w", err)
	}
	a.Kind = kindsByName[w.Kind]
	a.Tool = ""
	if a.Kind == KindTool {
		a.Tool = w.Tool
	}
	return nil
}

// ActivityFor maps a lifecycle event kind to an activity. Unmatched kinds map
// to idle; they are accepted, never rejected. Notification and SessionEnd do
// not go through this mapping.
func ActivityFor(event, tool string) Activity {
	switch event {
	case "SessionStart":
		return Activity{Kind: KindInit}
	case "PreToolUse":
		return Activity{Kind: KindTool, Tool: tool}
	case "PostToolUse", "PostToolUseFailure", "UserPromptSubmit":
		return Activity{Kind: KindThinking}
	case "PermissionRequest":
		return Activity{Kind: KindWaiting}
	case "Stop":
		return Activity{Kind: KindDone}
	case "SubagentStop":
		return Activity{Kind: KindAgentDone}
	default:
		return Activity{Kind: KindIdle}
	}
}
