package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/asheshgoplani/deckline/internal/app"
	"github.com/asheshgoplani/deckline/internal/bus"
	"github.com/asheshgoplani/deckline/internal/claudehooks"
	"github.com/asheshgoplani/deckline/internal/config"
)

const Version = "0.3.1"

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("Deckline v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "hook":
			handleHook()
			return
		case "hooks":
			handleHooks(args[1:])
			return
		case "focus":
			handleFocus(args[1:])
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
			printHelp()
			os.Exit(1)
		}
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// handleHooks manages deckline's entries in Claude Code settings.
func handleHooks(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: deckline hooks <install|uninstall|status>")
		os.Exit(1)
	}

	configDir, err := claudehooks.DefaultConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch args[0] {
	case "install":
		installed, err := claudehooks.Install(configDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if installed {
			fmt.Println("Claude Code hooks installed.")
		} else {
			fmt.Println("Claude Code hooks already installed.")
		}
	case "uninstall":
		removed, err := claudehooks.Uninstall(configDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if removed {
			fmt.Println("Claude Code hooks removed.")
		} else {
			fmt.Println("No Claude Code hooks found.")
		}
	case "status":
		if claudehooks.Installed(configDir) {
			fmt.Println("Claude Code hooks: installed")
		} else {
			fmt.Println("Claude Code hooks: not installed")
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown hooks command: %s\n", args[0])
		os.Exit(1)
	}
}

// handleFocus publishes a focus request for a pane. Notification click
// callbacks invoke this; the running bar picks it up and routes it to the
// workspace.
func handleFocus(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: deckline focus <pane-id>")
		os.Exit(1)
	}
	pane, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid pane id: %s\n", args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	b, err := bus.New(cfg.EffectiveBusDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := b.Publish(bus.ChannelFocus, uint32(pane)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`Deckline - live Claude Code activity in your zellij status bar

Usage:
  deckline                    Run the status bar (inside a zellij pane)
  deckline hook               Handle a Claude Code hook event (stdin JSON)
  deckline hooks install      Add deckline entries to ~/.claude/settings.json
  deckline hooks uninstall    Remove deckline entries
  deckline hooks status       Check whether hooks are installed
  deckline focus <pane-id>    Ask the running bar to focus a pane
  deckline version            Print version

Configuration:
  ~/.config/deckline/config.toml   data_dir, bus_dir, log_level, debug, zellij_bin
  ~/.deckline/settings.json        notifications, flash, elapsed_time
`)
}
