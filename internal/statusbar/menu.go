package statusbar

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/asheshgoplani/deckline/internal/settings"
)

func notifyModeLabel(mode settings.NotifyMode) (string, string, lipgloss.Color, lipgloss.Color) {
	switch mode {
	case settings.NotifyAlways:
		return "●", "Notify: always", colorMenuOn, colorWhite
	case settings.NotifyUnfocused:
		return "◐", "Notify: unfocused", colorMenuMid, colorMenuMid
	default:
		return "○", "Notify: off", colorMenuOff, colorMenuOff
	}
}

func flashModeLabel(mode settings.FlashMode) (string, string, lipgloss.Color, lipgloss.Color) {
	switch mode {
	case settings.FlashPersist:
		return "●", "Flash: persist", colorMenuOn, colorWhite
	case settings.FlashOnce:
		return "◐", "Flash: brief", colorMenuMid, colorMenuMid
	default:
		return "○", "Flash: off", colorMenuOff, colorMenuOff
	}
}

func elapsedLabel(enabled bool) (string, string, lipgloss.Color, lipgloss.Color) {
	if enabled {
		return "●", "Elapsed time: on", colorMenuOn, colorWhite
	}
	return "○", "Elapsed time: off", colorMenuOff, colorMenuOff
}

// menuControl draws one symbol+label toggle and records its click region.
// Controls that no longer fit the budget are skipped entirely.
func menuControl(b *lineBuilder, f *Frame, cols int, action MenuAction, symbol, label string, symColor, labelColor lipgloss.Color) {
	width := runewidth.StringWidth(symbol) + 1 + runewidth.StringWidth(label)
	if b.col+width > cols {
		return
	}

	bg := lipgloss.NewStyle().Background(colorBarBg)
	start := b.col
	b.write(bg.Foreground(symColor), symbol)
	b.write(bg.Foreground(labelColor), " "+label)
	f.Menu = append(f.Menu, MenuRegion{Start: start, End: b.col, Action: action})
}

// renderMenu draws the settings view: three toggles and a close control,
// each with its own click region.
func renderMenu(b *lineBuilder, f *Frame, in Input) {
	bg := lipgloss.NewStyle().Background(colorBarBg)
	gap := func() {
		if b.col+2 <= in.Cols {
			b.write(bg, "  ")
		}
	}

	if b.col+1 <= in.Cols {
		b.write(bg, " ")
	}

	symbol, label, symColor, labelColor := notifyModeLabel(in.Settings.Notifications)
	menuControl(b, f, in.Cols, MenuToggleNotify, symbol, label, symColor, labelColor)

	gap()
	symbol, label, symColor, labelColor = flashModeLabel(in.Settings.Flash)
	menuControl(b, f, in.Cols, MenuToggleFlash, symbol, label, symColor, labelColor)

	gap()
	symbol, label, symColor, labelColor = elapsedLabel(in.Settings.ElapsedTime)
	menuControl(b, f, in.Cols, MenuToggleElapsed, symbol, label, symColor, labelColor)

	gap()
	if b.col+1 <= in.Cols {
		start := b.col
		b.write(bg.Foreground(colorMenuClose), "×")
		f.Menu = append(f.Menu, MenuRegion{Start: start, End: b.col, Action: MenuClose})
	}
}
