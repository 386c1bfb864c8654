package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityFor_EventMapping(t *testing.T) {
	tests := []struct {
		event string
		tool  string
		want  Activity
	}{
		{"SessionStart", "", Activity{Kind: KindInit}},
		{"PreToolUse", "Bash", Activity{Kind: KindTool, Tool: "Bash"}},
		{"PreToolUse", "", Activity{Kind: KindTool}},
		{"PostToolUse", "Bash", Activity{Kind: KindThinking}},
		{"PostToolUseFailure", "", Activity{Kind: KindThinking}},
		{"UserPromptSubmit", "", Activity{Kind: KindThinking}},
		{"PermissionRequest", "", Activity{Kind: KindWaiting}},
		{"Stop", "", Activity{Kind: KindDone}},
		{"SubagentStop", "", Activity{Kind: KindAgentDone}},
		{"SomeFutureEvent", "", Activity{Kind: KindIdle}},
		{"", "", Activity{Kind: KindIdle}},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			assert.Equal(t, tt.want, ActivityFor(tt.event, tt.tool))
		})
	}
}

func TestActivityFor_ToolNameOnlyOnPreToolUse(t *testing.T) {
	// A tool name on a non-tool event must not leak into the activity.
	a := ActivityFor("UserPromptSubmit", "Bash")
	assert.Empty(t, a.Tool)
}

func TestActivityPriority_TotalOrder(t *testing.T) {
	ordered := []ActivityKind{
		KindWaiting, KindTool, KindThinking, KindPrompting,
		KindNotification, KindInit, KindDone, KindAgentDone, KindIdle,
	}
	for i := 1; i < len(ordered); i++ {
		hi := Activity{Kind: ordered[i-1]}
		lo := Activity{Kind: ordered[i]}
		assert.Greater(t, hi.Priority(), lo.Priority(),
			"%s should outrank %s", ordered[i-1], ordered[i])
	}
}

func TestActivityPriority_IgnoresTool(t *testing.T) {
	assert.Equal(t,
		Activity{Kind: KindTool, Tool: "Bash"}.Priority(),
		Activity{Kind: KindTool}.Priority(),
	)
}

func TestActivityJSON_RoundTrip(t *testing.T) {
	for kind := range kindNames {
		in := Activity{Kind: kind}
		if kind == KindTool {
			in.Tool = "Edit"
		}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out Activity
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, in, out)
	}
}

func TestActivityJSON_UnknownKindDegradesToIdle(t *testing.T) {
	var a Activity
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"quantum_leap"}`), &a))
	assert.Equal(t, KindIdle, a.Kind)
}

func TestActivityJSON_ToolDroppedForNonToolKind(t *testing.T) {
	var a Activity
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"thinking","tool":"Bash"}`), &a))
	assert.Equal(t, KindThinking, a.Kind)
	assert.Empty(t, a.Tool)
}
