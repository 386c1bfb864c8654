package app

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/asheshgoplani/deckline/internal/bus"
	"github.com/asheshgoplani/deckline/internal/config"
	"github.com/asheshgoplani/deckline/internal/logging"
	"github.com/asheshgoplani/deckline/internal/notify"
	"github.com/asheshgoplani/deckline/internal/zellij"
)

// Run starts the status bar and blocks until it exits.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logDir := ""
	if cfg.Debug {
		logDir = cfg.DataDir
	}
	logging.Init(logging.Config{
		LogDir: logDir,
		Level:  cfg.LogLevel,
		Debug:  cfg.Debug,
	})
	defer logging.Shutdown()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("deckline renders a status bar and needs a terminal on stdout")
	}
	// The bar's palette assumes 24-bit color; modern terminal emulators all
	// support it even when TERM undersells them.
	lipgloss.SetColorProfile(termenv.TrueColor)

	b, err := bus.New(cfg.EffectiveBusDir())
	if err != nil {
		return fmt.Errorf("open bus: %w", err)
	}
	watcher, err := b.Watch(context.Background())
	if err != nil {
		return fmt.Errorf("watch bus: %w", err)
	}
	defer watcher.Close()

	exe, err := os.Executable()
	if err != nil {
		exe = "deckline"
	}
	notifier := notify.NewNotifier(notify.ShellRunner{}, notify.NewThrottle(notify.Cooldown), exe)

	model := NewModel(cfg, b, watcher.Events(), zellij.NewActions(cfg.ZellijBin), notifier)
	program := tea.NewProgram(model, tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run status bar: %w", err)
	}
	return nil
}
