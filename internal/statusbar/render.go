// Package statusbar lays out the one-line bar: a single pass over a fixed
// column budget that emits styled segments and records the click regions for
// exactly the glyphs drawn in that pass.
package statusbar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/asheshgoplani/deckline/internal/session"
	"github.com/asheshgoplani/deckline/internal/settings"
	"github.com/asheshgoplani/deckline/internal/topology"
)

const (
	// minCols is the budget below which the bar degrades to a blank line.
	minCols = 5

	// maxTabNameWidth caps each tab's name cell budget.
	maxTabNameWidth = 20

	// elapsedThreshold is the minimum activity age before an elapsed suffix
	// is shown.
	elapsedThreshold = 30 * time.Second

	// separator is the powerline transition glyph.
	separator = ""
)

// ViewMode selects between the tab strip and the settings menu.
type ViewMode int

const (
	ViewNormal ViewMode = iota
	ViewSettings
)

// MenuAction identifies a settings-menu control.
type MenuAction int

const (
	MenuToggleNotify MenuAction = iota
	MenuToggleFlash
	MenuToggleElapsed
	MenuClose
)

// TabRegion is the clickable column range of one tab segment.
type TabRegion struct {
	Start, End int
	TabIndex   int
	PaneID     uint32
	Waiting    bool
}

// MenuRegion is the clickable column range of one settings control.
type MenuRegion struct {
	Start, End int
	Action     MenuAction
}

// Frame is the output of one render pass: the line plus the hit-test regions
// for exactly what was drawn. A frame from a previous pass must never be
// consulted after a new pass starts.
type Frame struct {
	Line        string
	PrefixStart int
	PrefixEnd   int
	Tabs        []TabRegion
	Menu        []MenuRegion
}

// HitPrefix reports whether a click column lands on the prefix segment.
func (f Frame) HitPrefix(col int) bool {
	return col >= f.PrefixStart && col < f.PrefixEnd
}

// HitTab returns the tab region under a click column, or nil.
func (f Frame) HitTab(col int) *TabRegion {
	for i := range f.Tabs {
		if col >= f.Tabs[i].Start && col < f.Tabs[i].End {
			return &f.Tabs[i]
		}
	}
	return nil
}

// HitMenu returns the menu region under a click column, or nil.
func (f Frame) HitMenu(col int) *MenuRegion {
	for i := range f.Menu {
		if col >= f.Menu[i].Start && col < f.Menu[i].End {
			return &f.Menu[i]
		}
	}
	return nil
}

// Input is everything one render pass consumes. Render is a pure function of
// it; in particular the flash blink phase is recomputed from Now every pass.
type Input struct {
	Cols        int
	Mode        ViewMode
	SessionName string
	InputMode   string
	Tabs        []topology.Tab
	Registry    *session.Registry
	Flashes     *session.Flasher
	Settings    settings.Settings
	Now         time.Time
}

// lineBuilder accumulates styled text while tracking the visible column.
type lineBuilder struct {
	sb  strings.Builder
	col int
}

func (b *lineBuilder) write(style lipgloss.Style, text string) {
	b.sb.WriteString(style.Render(text))
	b.col += runewidth.StringWidth(text)
}

// arrow draws a powerline transition from one background to the next.
func (b *lineBuilder) arrow(from, to lipgloss.Color) {
	b.write(lipgloss.NewStyle().Foreground(from).Background(to), separator)
}

// Render lays out one frame. The emitted line never exceeds in.Cols visible
// columns, whatever the tab count.
func Render(in Input) Frame {
	var f Frame
	b := &lineBuilder{}

	barBg := lipgloss.NewStyle().Background(colorBarBg)

	// Too narrow for any segment logic: blank fill only.
	if in.Cols < minCols {
		if in.Cols > 0 {
			b.write(barBg, strings.Repeat(" ", in.Cols))
		}
		f.Line = b.sb.String()
		return f
	}

	prefixBg := colorPrefixBg
	if in.Mode == ViewSettings {
		prefixBg = colorPrefixBgMenu
	}

	modeBg, modeText := modeStyle(in.InputMode)
	sessionPart := ""
	if in.SessionName != "" {
		sessionPart = fmt.Sprintf(" (%s)", in.SessionName)
	}
	prefixText := " Deckline" + sessionPart + " "
	pillText := " " + modeText + " "

	prefixWidth := runewidth.StringWidth(prefixText)
	totalPrefixWidth := prefixWidth + runewidth.StringWidth(pillText)

	prefixStyle := lipgloss.NewStyle().Background(prefixBg).Foreground(colorWhite).Bold(true)
	pillStyle := lipgloss.NewStyle().Background(modeBg).Foreground(colorBarBg).Bold(true)

	lastPrefixBg := prefixBg
	switch {
	case totalPrefixWidth <= in.Cols:
		b.write(prefixStyle, prefixText)
		b.write(pillStyle, pillText)
		lastPrefixBg = modeBg
	case prefixWidth <= in.Cols:
		b.write(prefixStyle, prefixText)
	default:
		b.write(prefixStyle, runewidth.Truncate(prefixText, in.Cols-2, ""))
	}
	f.PrefixStart, f.PrefixEnd = 0, b.col
	prefixUsed := b.col

	if b.col < in.Cols {
		switch in.Mode {
		case ViewNormal:
			renderTabs(b, &f, in, lastPrefixBg, prefixUsed)
		case ViewSettings:
			b.arrow(lastPrefixBg, colorBarBg)
			renderMenu(b, &f, in)
		}
	}

	if b.col < in.Cols {
		b.write(barBg, strings.Repeat(" ", in.Cols-b.col))
	}

	f.Line = b.sb.String()
	return f
}

func formatElapsed(secs int64) string {
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%dh", secs/3600)
	}
}

func renderTabs(b *lineBuilder, f *Frame, in Input, prefixBg lipgloss.Color, prefixUsed int) {
	tabs := make([]topology.Tab, len(in.Tabs))
	copy(tabs, in.Tabs)
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].Position < tabs[j].Position })

	if len(tabs) == 0 {
		b.arrow(prefixBg, colorBarBg)
		return
	}

	// Pick the session shown per tab and precompute symbols and elapsed
	// suffixes, all of which feed the shared name budget.
	best := make([]*session.Session, len(tabs))
	symbols := make([]string, len(tabs))
	symColors := make([]lipgloss.Color, len(tabs))
	elapsed := make([]string, len(tabs))
	totalElapsedWidth := 0
	perTabOverhead := 0
	for i, tab := range tabs {
		best[i] = in.Registry.BestForTab(tab.Position)
		if best[i] != nil {
			symbols[i], symColors[i] = activityStyle(best[i].Activity)
			// spaces around the cell plus the symbol, which is not always a
			// single column (runewidth counts some glyphs as two).
			perTabOverhead += 3 + runewidth.StringWidth(symbols[i])
			if in.Settings.ElapsedTime {
				if age := session.SecondsSince(in.Now, best[i].LastEventTS); age >= int64(elapsedThreshold.Seconds()) {
					elapsed[i] = formatElapsed(age)
					totalElapsedWidth += len(elapsed[i]) + 1
				}
			}
		} else {
			perTabOverhead += 2
		}
	}

	overhead := prefixUsed + 2*len(tabs) + perTabOverhead + totalElapsedWidth
	maxName := 0
	if overhead < in.Cols {
		maxName = (in.Cols - overhead) / len(tabs)
		if maxName > maxTabNameWidth {
			maxName = maxTabNameWidth
		}
	}

	prevBg := prefixBg
	for i, tab := range tabs {
		name := ""
		if maxName > 0 {
			name = runewidth.Truncate(tab.Name, maxName, "…")
		}

		flashBright := in.Registry.AnyFlashOnTab(tab.Position, in.Flashes, in.Now)
		tabBg := colorTabBgInactive
		switch {
		case flashBright:
			tabBg = colorFlashBg
		case tab.Active:
			tabBg = colorTabBgActive
		}

		// Segment width accounting before committing anything, so a segment
		// that cannot fit (plus the closing transition) is simply not drawn.
		arrowsWidth := 2
		if prevBg == prefixBg {
			arrowsWidth = 1
		}
		headWidth := 1 + runewidth.StringWidth(name) // leading space + name
		if best[i] != nil {
			headWidth += runewidth.StringWidth(symbols[i])
			if name != "" {
				headWidth++ // space between symbol and name
			}
		}
		segWidth := headWidth + 1 // trailing space
		if b.col+arrowsWidth+segWidth+1 > in.Cols {
			break
		}
		withElapsed := elapsed[i] != "" && b.col+arrowsWidth+segWidth+len(elapsed[i])+2 <= in.Cols

		if prevBg == prefixBg {
			b.arrow(prevBg, tabBg)
		} else {
			b.arrow(prevBg, colorBarBg)
			b.arrow(colorBarBg, tabBg)
		}

		regionStart := b.col
		bg := lipgloss.NewStyle().Background(tabBg)

		if best[i] != nil {
			symStyle := bg.Foreground(symColors[i])
			nameStyle := bg.Foreground(colorSessionName)
			switch {
			case flashBright:
				symStyle = bg.Foreground(colorFlashText)
				nameStyle = bg.Foreground(colorFlashText).Bold(true)
			case tab.Active:
				nameStyle = bg.Foreground(colorWhite).Bold(true)
			}

			b.write(bg, " ")
			b.write(symStyle, symbols[i])
			if name != "" {
				b.write(nameStyle, " "+name)
			}
			if withElapsed {
				b.write(bg.Foreground(colorElapsed), " "+elapsed[i])
			}
			b.write(bg, " ")

			waiting := in.Registry.WaitingOnTab(tab.Position)
			region := TabRegion{Start: regionStart, End: b.col, TabIndex: tab.Position}
			if waiting != nil {
				region.PaneID = waiting.PaneID
				region.Waiting = true
			}
			f.Tabs = append(f.Tabs, region)
		} else {
			nameStyle := bg.Foreground(colorPlainTab)
			if tab.Active {
				nameStyle = bg.Foreground(colorPlainTabActive).Bold(true)
			}
			b.write(bg, " ")
			if name != "" {
				b.write(nameStyle, name)
			}
			b.write(bg, " ")
			f.Tabs = append(f.Tabs, TabRegion{Start: regionStart, End: b.col, TabIndex: tab.Position})
		}

		prevBg = tabBg
	}

	if b.col < in.Cols {
		b.arrow(prevBg, colorBarBg)
	}
}
