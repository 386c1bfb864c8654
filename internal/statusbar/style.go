package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/asheshgoplani/deckline/internal/session"
)

// Bar palette.
var (
	colorBarBg          = lipgloss.Color("#1e1e2e")
	colorPrefixBg       = lipgloss.Color("#3c3250")
	colorPrefixBgMenu   = lipgloss.Color("#64468c")
	colorTabBgActive    = lipgloss.Color("#8c64c8")
	colorTabBgInactive  = lipgloss.Color("#504b6e")
	colorFlashBg        = lipgloss.Color("#50501e")
	colorFlashText      = lipgloss.Color("#ffff50")
	colorWhite          = lipgloss.Color("#ffffff")
	colorSessionName    = lipgloss.Color("#78dcdc")
	colorElapsed        = lipgloss.Color("#a5a0b4")
	colorPlainTabActive = lipgloss.Color("#dcd7e6")
	colorPlainTab       = lipgloss.Color("#aaa5b9")
	colorMenuOn         = lipgloss.Color("#50c878")
	colorMenuMid        = lipgloss.Color("#ffc83c")
	colorMenuOff        = lipgloss.Color("#646464")
	colorMenuClose      = lipgloss.Color("#ff3c3c")
)

// activityStyle returns the symbol and symbol color for an activity.
func activityStyle(a session.Activity) (string, lipgloss.Color) {
	switch a.Kind {
	case session.KindInit:
		return "◆", lipgloss.Color("#b4afc3")
	case session.KindThinking:
		return "●", lipgloss.Color("#b48cff")
	case session.KindTool:
		return toolSymbol(a.Tool), lipgloss.Color("#ffaa32")
	case session.KindPrompting:
		return "▶", lipgloss.Color("#50c878")
	case session.KindWaiting:
		return "⚠", lipgloss.Color("#ff3c3c")
	case session.KindNotification:
		return "◇", lipgloss.Color("#c8c864")
	case session.KindDone:
		return "✓", lipgloss.Color("#50c878")
	case session.KindAgentDone:
		return "✓", lipgloss.Color("#50b464")
	default:
		return "○", lipgloss.Color("#b4afc3")
	}
}

func toolSymbol(name string) string {
	switch name {
	case "Bash":
		return "⚡"
	case "Read", "Glob", "Grep":
		return "◉"
	case "Edit", "Write":
		return "✎"
	case "Task":
		return "⊜"
	case "WebSearch", "WebFetch":
		return "◈"
	default:
		return "⚙"
	}
}

// modeStyle returns the pill background and label for a workspace input mode.
func modeStyle(mode string) (lipgloss.Color, string) {
	switch strings.ToLower(mode) {
	case "", "normal":
		return lipgloss.Color("#50c878"), "NORMAL"
	case "locked":
		return lipgloss.Color("#ff5050"), "LOCKED"
	case "pane":
		return lipgloss.Color("#50b4ff"), "PANE"
	case "tab":
		return lipgloss.Color("#b48cff"), "TAB"
	case "resize":
		return lipgloss.Color("#ffaa32"), "RESIZE"
	case "move":
		return lipgloss.Color("#ffaa32"), "MOVE"
	case "scroll":
		return lipgloss.Color("#c8c864"), "SCROLL"
	case "search", "entersearch":
		return lipgloss.Color("#c8c864"), "SEARCH"
	case "renametab", "renamepane":
		return lipgloss.Color("#c8c864"), "RENAME"
	case "session":
		return lipgloss.Color("#b48cff"), "SESSION"
	case "prompt":
		return lipgloss.Color("#50c878"), "PROMPT"
	case "tmux":
		return lipgloss.Color("#50c878"), "TMUX"
	default:
		return lipgloss.Color("#787fa0"), strings.ToUpper(mode)
	}
}
