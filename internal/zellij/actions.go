// Package zellij shells out to the zellij CLI for the workspace actions the
// bar delegates: focusing a pane and switching tabs. All calls are
// fire-and-forget; a failed action degrades to "nothing happened".
package zellij

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/asheshgoplani/deckline/internal/logging"
)

var actionLog = logging.ForComponent(logging.CompActions)

// Actions invokes zellij actions for click and focus routing.
type Actions struct {
	bin string
}

// NewActions returns an adapter using the given zellij binary.
func NewActions(bin string) *Actions {
	if bin == "" {
		bin = "zellij"
	}
	return &Actions{bin: bin}
}

// FocusPane moves focus to a terminal pane by id.
func (a *Actions) FocusPane(pane uint32) error {
	return a.run("action", "focus-pane-with-id", fmt.Sprintf("terminal:%d", pane))
}

// SwitchTab switches to a tab by position (zero-based; zellij counts from 1).
func (a *Actions) SwitchTab(position int) error {
	return a.run("action", "go-to-tab", strconv.Itoa(position+1))
}

func (a *Actions) run(args ...string) error {
	cmd := exec.Command(a.bin, args...)
	if err := cmd.Start(); err != nil {
		actionLog.Warn("action_failed", slog.String("bin", a.bin), slog.String("error", err.Error()))
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
