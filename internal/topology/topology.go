// Package topology models the host workspace's tab/pane layout as delivered
// by the workspace bridge, and derives the pane-to-tab binding used to place
// sessions on the status bar.
package topology

// Tab describes one workspace tab.
type Tab struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
}

// Pane describes one pane in the workspace manifest.
type Pane struct {
	ID       uint32 `json:"id"`
	TabIndex int    `json:"tab_index"`
	IsPlugin bool   `json:"is_plugin"`
}

// Snapshot is a full topology update from the workspace bridge. It is always
// consumed wholesale; the bar never patches a previous snapshot.
type Snapshot struct {
	SessionName string `json:"session_name,omitempty"`
	InputMode   string `json:"input_mode,omitempty"`
	Tabs        []Tab  `json:"tabs"`
	Panes       []Pane `json:"panes"`
}

// ActiveTab returns the position of the active tab, if any.
func (s Snapshot) ActiveTab() (int, bool) {
	for _, t := range s.Tabs {
		if t.Active {
			return t.Position, true
		}
	}
	return 0, false
}

// Binding is a derived (tab index, tab name) pair for a pane.
type Binding struct {
	TabIndex int
	TabName  string
}

// Locator owns the non-authoritative pane -> tab cache. It is fully rebuilt
// from each snapshot; topology misses degrade to "unknown" rather than error.
type Locator struct {
	byPane map[uint32]Binding
}

// NewLocator returns an empty locator.
func NewLocator() *Locator {
	return &Locator{byPane: make(map[uint32]Binding)}
}

// Rebuild replaces the pane map from a snapshot. Plugin panes are excluded:
// only terminal panes can host sessions.
func (l *Locator) Rebuild(snap Snapshot) {
	nameByPosition := make(map[int]string, len(snap.Tabs))
	for _, t := range snap.Tabs {
		nameByPosition[t.Position] = t.Name
	}

	byPane := make(map[uint32]Binding, len(snap.Panes))
	for _, p := range snap.Panes {
		if p.IsPlugin {
			continue
		}
		byPane[p.ID] = Binding{TabIndex: p.TabIndex, TabName: nameByPosition[p.TabIndex]}
	}
	l.byPane = byPane
}

// Lookup returns the tab binding for a pane.
func (l *Locator) Lookup(pane uint32) (Binding, bool) {
	b, ok := l.byPane[pane]
	return b, ok
}

// Contains reports whether the pane is known to the current topology.
func (l *Locator) Contains(pane uint32) bool {
	_, ok := l.byPane[pane]
	return ok
}

// Len returns the number of tracked panes.
func (l *Locator) Len() int {
	return len(l.byPane)
}
