// Package claudehooks manages the deckline entries in Claude Code's
// settings.json hooks section. Edits are read-preserve-modify-write: user
// hooks and unrelated settings keys pass through untouched.
package claudehooks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/asheshgoplani/deckline/internal/logging"
)

var hooksLog = logging.ForComponent(logging.CompHooks)

// hookCommand is the marker command that identifies deckline's entries.
const hookCommand = "deckline hook"

// hookEntry is one command hook in Claude Code settings.
type hookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Async   bool   `json:"async,omitempty"`
}

// matcherBlock groups hooks under an optional matcher pattern.
type matcherBlock struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []hookEntry `json:"hooks"`
}

func decklineEntry() hookEntry {
	return hookEntry{Type: "command", Command: hookCommand, Async: true}
}

// subscribedEvents lists every lifecycle event the bar consumes, with the
// matcher pattern where one applies.
var subscribedEvents = []struct {
	Event   string
	Matcher string
}{
	{Event: "SessionStart"},
	{Event: "UserPromptSubmit"},
	{Event: "PreToolUse"},
	{Event: "PostToolUse"},
	{Event: "Stop"},
	{Event: "SubagentStop"},
	{Event: "PermissionRequest"},
	{Event: "Notification", Matcher: "permission_prompt|elicitation_dialog"},
	{Event: "SessionEnd"},
}

// DefaultConfigDir is where Claude Code keeps user-level settings.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".claude"), nil
}

// Install adds deckline's hook entries to settings.json, creating the file if
// needed. Returns false if every entry was already present.
func Install(configDir string) (bool, error) {
	raw, hooks, err := loadSettings(configDir)
	if err != nil {
		return false, err
	}

	if allInstalled(hooks) {
		return false, nil
	}

	for _, sub := range subscribedEvents {
		hooks[sub.Event] = mergeEvent(hooks[sub.Event], sub.Matcher)
	}
	if err := storeSettings(configDir, raw, hooks); err != nil {
		return false, err
	}

	hooksLog.Info("hooks_installed", slog.String("config_dir", configDir))
	return true, nil
}

// Uninstall strips deckline's entries from settings.json, leaving everything
// else intact. Returns false if none were present.
func Uninstall(configDir string) (bool, error) {
	if _, err := os.Stat(settingsPath(configDir)); os.IsNotExist(err) {
		return false, nil
	}

	raw, hooks, err := loadSettings(configDir)
	if err != nil {
		return false, err
	}

	removed := false
	for _, sub := range subscribedEvents {
		entry, ok := hooks[sub.Event]
		if !ok {
			continue
		}
		cleaned, changed := stripEvent(entry)
		if !changed {
			continue
		}
		removed = true
		if cleaned == nil {
			delete(hooks, sub.Event)
		} else {
			hooks[sub.Event] = cleaned
		}
	}
	if !removed {
		return false, nil
	}

	if err := storeSettings(configDir, raw, hooks); err != nil {
		return false, err
	}

	hooksLog.Info("hooks_removed", slog.String("config_dir", configDir))
	return true, nil
}

// Installed reports whether every subscribed event carries a deckline entry.
func Installed(configDir string) bool {
	_, hooks, err := loadSettings(configDir)
	if err != nil {
		return false
	}
	return allInstalled(hooks)
}

func settingsPath(configDir string) string {
	return filepath.Join(configDir, "settings.json")
}

// loadSettings reads settings.json into the top-level raw map plus the parsed
// hooks section. A missing file yields empty maps.
func loadSettings(configDir string) (map[string]json.RawMessage, map[string]json.RawMessage, error) {
	raw := make(map[string]json.RawMessage)
	data, err := os.ReadFile(settingsPath(configDir))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, nil, fmt.Errorf("read settings.json: %w", err)
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("parse settings.json: %w", err)
		}
	}

	hooks := make(map[string]json.RawMessage)
	if hooksRaw, ok := raw["hooks"]; ok {
		// A malformed hooks section is replaced rather than fatal.
		if err := json.Unmarshal(hooksRaw, &hooks); err != nil {
			hooks = make(map[string]json.RawMessage)
		}
	}
	return raw, hooks, nil
}

// storeSettings writes the settings file atomically.
func storeSettings(configDir string, raw map[string]json.RawMessage, hooks map[string]json.RawMessage) error {
	if len(hooks) == 0 {
		delete(raw, "hooks")
	} else {
		hooksRaw, err := json.Marshal(hooks)
		if err != nil {
			return fmt.Errorf("marshal hooks: %w", err)
		}
		raw["hooks"] = hooksRaw
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	path := settingsPath(configDir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write settings.json.tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename settings.json: %w", err)
	}
	return nil
}

func allInstalled(hooks map[string]json.RawMessage) bool {
	for _, sub := range subscribedEvents {
		raw, ok := hooks[sub.Event]
		if !ok || !eventHasEntry(raw) {
			return false
		}
	}
	return true
}

func eventHasEntry(raw json.RawMessage) bool {
	var blocks []matcherBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return false
	}
	for _, b := range blocks {
		for _, h := range b.Hooks {
			if strings.Contains(h.Command, hookCommand) {
				return true
			}
		}
	}
	return false
}

// mergeEvent adds deckline's entry to an event's matcher array, preserving
// every existing matcher and hook.
func mergeEvent(existing json.RawMessage, matcher string) json.RawMessage {
	var blocks []matcherBlock
	if existing != nil {
		if err := json.Unmarshal(existing, &blocks); err != nil {
			blocks = nil
		}
	}

	for i, b := range blocks {
		if b.Matcher != matcher {
			continue
		}
		for _, h := range b.Hooks {
			if strings.Contains(h.Command, hookCommand) {
				result, _ := json.Marshal(blocks)
				return result
			}
		}
		blocks[i].Hooks = append(blocks[i].Hooks, decklineEntry())
		result, _ := json.Marshal(blocks)
		return result
	}

	blocks = append(blocks, matcherBlock{Matcher: matcher, Hooks: []hookEntry{decklineEntry()}})
	result, _ := json.Marshal(blocks)
	return result
}

// stripEvent removes deckline entries from an event's matcher array. Returns
// nil JSON when nothing remains in the array.
func stripEvent(raw json.RawMessage) (json.RawMessage, bool) {
	var blocks []matcherBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return raw, false
	}

	removed := false
	var kept []matcherBlock
	for _, b := range blocks {
		var hooks []hookEntry
		for _, h := range b.Hooks {
			if strings.Contains(h.Command, hookCommand) {
				removed = true
				continue
			}
			hooks = append(hooks, h)
		}
		if len(hooks) > 0 {
			b.Hooks = hooks
			kept = append(kept, b)
		}
	}
	if !removed {
		return raw, false
	}
	if len(kept) == 0 {
		return nil, true
	}
	result, _ := json.Marshal(kept)
	return result, true
}
