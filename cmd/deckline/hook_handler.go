package main

import (
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/asheshgoplani/deckline/internal/bus"
	"github.com/asheshgoplani/deckline/internal/config"
	"github.com/asheshgoplani/deckline/internal/session"
)

// stdinPayload is the JSON Claude Code pipes to hook commands. Only the
// fields the bar consumes are decoded; unknown fields are ignored.
type stdinPayload struct {
	HookEventName string `json:"hook_event_name"`
	SessionID     string `json:"session_id"`
	ToolName      string `json:"tool_name"`
	CWD           string `json:"cwd"`
}

// handleHook forwards one Claude Code hook event onto the bus. It always
// exits 0: a hook that fails loudly would block or spam Claude Code, and a
// missed status update is harmless.
func handleHook() {
	defer os.Exit(0)

	// Hooks fire in every terminal; only panes inside zellij can be tracked.
	paneEnv := os.Getenv("ZELLIJ_PANE_ID")
	if paneEnv == "" {
		return
	}
	pane, err := strconv.ParseUint(paneEnv, 10, 32)
	if err != nil {
		return
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return
	}
	var in stdinPayload
	if err := json.Unmarshal(data, &in); err != nil || in.HookEventName == "" {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		return
	}
	b, err := bus.New(cfg.EffectiveBusDir())
	if err != nil {
		return
	}
	_ = b.Publish(bus.ChannelHook, session.HookPayload{
		SessionID:     in.SessionID,
		PaneID:        uint32(pane),
		HookEvent:     in.HookEventName,
		ToolName:      in.ToolName,
		CWD:           in.CWD,
		ZellijSession: os.Getenv("ZELLIJ_SESSION_NAME"),
		TermProgram:   os.Getenv("TERM_PROGRAM"),
	})
}
