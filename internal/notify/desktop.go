package notify

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/asheshgoplani/deckline/internal/logging"
	"github.com/asheshgoplani/deckline/internal/settings"
)

var notifyLog = logging.ForComponent(logging.CompNotify)

// Runner executes a shell command line, fire-and-forget.
type Runner interface {
	Run(cmdline string)
}

// ShellRunner runs command lines through `sh -c` without waiting.
type ShellRunner struct{}

// Run starts the command and abandons it; alert delivery is best effort.
func (ShellRunner) Run(cmdline string) {
	cmd := exec.Command("sh", "-c", cmdline)
	if err := cmd.Start(); err != nil {
		notifyLog.Warn("alert_spawn_failed", slog.String("error", err.Error()))
		return
	}
	go func() { _ = cmd.Wait() }()
}

// Alert describes one waiting-session alert.
type Alert struct {
	TabName     string
	ToolName    string
	PaneID      uint32
	TermProgram string
}

// Notifier gates alerts on the notification mode and the per-tab cooldown,
// then hands the command line to the runner.
type Notifier struct {
	runner   Runner
	throttle *Throttle

	// exe is the command invoked by the notification click callback to route
	// focus back to the waiting pane.
	exe string
}

// NewNotifier wires a notifier. exe is the deckline binary name or path used
// in click callbacks.
func NewNotifier(runner Runner, throttle *Throttle, exe string) *Notifier {
	if exe == "" {
		exe = "deckline"
	}
	return &Notifier{runner: runner, throttle: throttle, exe: exe}
}

// MaybeAlert fires at most one alert for this waiting transition. tabKnown
// and activeKnown report whether the pane's tab and the active tab are known;
// an unknown tab counts as unfocused. Returns whether an alert was dispatched.
func (n *Notifier) MaybeAlert(mode settings.NotifyMode, tabIndex int, tabKnown bool, activeTab int, activeKnown bool, a Alert) bool {
	switch mode {
	case settings.NotifyNever:
		return false
	case settings.NotifyUnfocused:
		if tabKnown && activeKnown && tabIndex == activeTab {
			return false
		}
	case settings.NotifyAlways:
	}

	key := UntrackedKey
	if tabKnown {
		key = uint32(tabIndex)
	}
	if !n.throttle.Allow(key) {
		return false
	}

	n.runner.Run(n.BuildCommand(a))
	notifyLog.Debug("alert_dispatched",
		slog.Uint64("pane", uint64(a.PaneID)),
		slog.String("tab", a.TabName),
	)
	return true
}

// PruneCooldowns drops cooldown state for tabs that no longer exist.
func (n *Notifier) PruneCooldowns(valid func(key uint32) bool) {
	n.throttle.Prune(valid)
}

// BuildCommand renders the alert command line. Every user-controlled
// substring is shell-escaped before interpolation.
func (n *Notifier) BuildCommand(a Alert) string {
	tab := a.TabName
	if tab == "" {
		tab = "Claude Code"
	}
	toolSuffix := ""
	if a.ToolName != "" {
		toolSuffix = " — " + a.ToolName
	}

	title := "⚠ " + tab
	message := "Permission requested" + toolSuffix

	// Click callback: re-activate the terminal program, then route a focus
	// request for the waiting pane back onto the bus.
	activate := ""
	if a.TermProgram != "" {
		activate = fmt.Sprintf("open -a %s && ", shellQuote(a.TermProgram))
	}
	focus := shellQuote(fmt.Sprintf("%s%s focus %d", activate, n.exe, a.PaneID))
	script := shellQuote(fmt.Sprintf("display notification %q with title %q", message, title))

	return fmt.Sprintf(
		"if command -v terminal-notifier >/dev/null 2>&1; then "+
			"terminal-notifier -title %[1]s -message %[2]s -execute %[3]s; "+
			"elif command -v osascript >/dev/null 2>&1; then "+
			"osascript -e %[4]s; "+
			"else notify-send %[1]s %[2]s; fi",
		shellQuote(title), shellQuote(message), focus, script,
	)
}

// shellQuote wraps s in single quotes, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
