// Package app drives the status bar: a single bubbletea update loop through
// which every input travels as a discrete message — bus envelopes, topology
// snapshots, render ticks, mouse clicks, the settings load result. The loop
// owns all mutable state; nothing in here needs a lock.
package app

import (
	"encoding/json"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/asheshgoplani/deckline/internal/bus"
	"github.com/asheshgoplani/deckline/internal/config"
	"github.com/asheshgoplani/deckline/internal/logging"
	"github.com/asheshgoplani/deckline/internal/notify"
	"github.com/asheshgoplani/deckline/internal/session"
	"github.com/asheshgoplani/deckline/internal/settings"
	"github.com/asheshgoplani/deckline/internal/statusbar"
	"github.com/asheshgoplani/deckline/internal/topology"
)

var appLog = logging.ForComponent(logging.CompApp)

// WorkspaceActions is the host-workspace collaborator for click routing.
type WorkspaceActions interface {
	FocusPane(pane uint32) error
	SwitchTab(position int) error
}

type (
	// tickMsg is the self-re-arming render tick. The generation stamp lets a
	// waiting transition restart the chain at the fast cadence without
	// leaving a second timer running.
	tickMsg struct {
		gen int
		t   time.Time
	}

	envMsg       bus.Envelope
	busClosedMsg struct{}

	settingsLoadedMsg struct {
		s     settings.Settings
		state settings.LoadState
	}
)

// Model is the aggregate root threaded through every update.
type Model struct {
	cfg     config.Config
	bus     *bus.Bus
	events  <-chan bus.Envelope
	actions WorkspaceActions

	registry *session.Registry
	flashes  *session.Flasher
	locator  *topology.Locator
	notifier *notify.Notifier

	tabs           []topology.Tab
	sessionName    string
	termProgram    string
	inputMode      string
	activeTab      int
	activeTabKnown bool

	settings     settings.Settings
	loadState    settings.LoadState
	saveDeferred bool

	view    statusbar.ViewMode
	frame   statusbar.Frame
	width   int
	tickGen int
}

// NewModel wires the bar's aggregate state.
func NewModel(cfg config.Config, b *bus.Bus, events <-chan bus.Envelope, actions WorkspaceActions, notifier *notify.Notifier) *Model {
	return &Model{
		cfg:      cfg,
		bus:      b,
		events:   events,
		actions:  actions,
		registry: session.NewRegistry(),
		flashes:  session.NewFlasher(),
		locator:  topology.NewLocator(),
		notifier: notifier,
		settings: settings.Default(),
		width:    80,
	}
}

// Init asks existing instances for their state, kicks off the async settings
// load, and starts the tick chain.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.requestSync(),
		m.loadSettings(),
		m.waitEnvelope(),
		m.tick(session.SlowTick),
	)
}

func (m *Model) requestSync() tea.Cmd {
	return func() tea.Msg {
		if err := m.bus.Publish(bus.ChannelRequest, nil); err != nil {
			appLog.Warn("sync_request_failed", slog.String("error", err.Error()))
		}
		return nil
	}
}

func (m *Model) loadSettings() tea.Cmd {
	path := m.cfg.SettingsPath()
	return func() tea.Msg {
		s, state := settings.Load(path)
		return settingsLoadedMsg{s: s, state: state}
	}
}

func (m *Model) waitEnvelope() tea.Cmd {
	return func() tea.Msg {
		env, ok := <-m.events
		if !ok {
			return busClosedMsg{}
		}
		return envMsg(env)
	}
}

func (m *Model) tick(d time.Duration) tea.Cmd {
	gen := m.tickGen
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, t: t}
	})
}

// Update handles one discrete input to completion and rebuilds the frame.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			cmds = append(cmds, m.handleClick(msg.X))
		}

	case tickMsg:
		if msg.gen != m.tickGen {
			// A superseded chain; the newer one re-arms itself.
			return m, nil
		}
		now := time.Now()
		m.registry.AgeTerminal(now)
		m.flashes.Expire(now)
		cmds = append(cmds, m.tick(m.flashes.TickInterval(now)))

	case envMsg:
		cmds = append(cmds, m.handleEnvelope(bus.Envelope(msg))...)
		cmds = append(cmds, m.waitEnvelope())

	case busClosedMsg:
		appLog.Info("bus_closed")
		return m, tea.Quit

	case settingsLoadedMsg:
		m.applyLoadedSettings(msg)
	}

	m.rebuildFrame()
	return m, tea.Batch(cmds...)
}

// View renders the frame built by the last update.
func (m *Model) View() string {
	return m.frame.Line
}

func (m *Model) rebuildFrame() {
	m.frame = statusbar.Render(statusbar.Input{
		Cols:        m.width,
		Mode:        m.view,
		SessionName: m.sessionName,
		InputMode:   m.inputMode,
		Tabs:        m.tabs,
		Registry:    m.registry,
		Flashes:     m.flashes,
		Settings:    m.settings,
		Now:         time.Now(),
	})
}

func (m *Model) handleEnvelope(env bus.Envelope) []tea.Cmd {
	switch env.Channel {
	case bus.ChannelHook:
		var payload session.HookPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.HookEvent == "" {
			return nil
		}
		return m.handleHook(payload)

	case bus.ChannelRequest:
		if err := m.bus.Publish(bus.ChannelSync, m.registry.Snapshot()); err != nil {
			appLog.Warn("sync_broadcast_failed", slog.String("error", err.Error()))
		}

	case bus.ChannelSync:
		var incoming map[uint32]session.Session
		if err := json.Unmarshal(env.Payload, &incoming); err != nil {
			return nil
		}
		m.registry.Merge(incoming, m.locator)

	case bus.ChannelSettings:
		s, err := settings.Parse(env.Payload)
		if err != nil {
			return nil
		}
		// Foreign settings replace the whole value; they are not re-persisted
		// or re-broadcast, or two instances would ping-pong forever.
		m.settings = s

	case bus.ChannelFocus:
		var pane uint32
		if err := json.Unmarshal(env.Payload, &pane); err != nil {
			return nil
		}
		_ = m.actions.FocusPane(pane)

	case bus.ChannelTopology:
		var snap topology.Snapshot
		if err := json.Unmarshal(env.Payload, &snap); err != nil {
			return nil
		}
		m.applyTopology(snap)
	}
	return nil
}

func (m *Model) handleHook(p session.HookPayload) []tea.Cmd {
	if p.ZellijSession != "" {
		m.sessionName = p.ZellijSession
	}
	if p.TermProgram != "" {
		m.termProgram = p.TermProgram
	}

	now := time.Now()
	res := m.registry.ApplyHook(p, m.flashes, m.settings.Flash, m.locator, now)
	if res.Removed {
		return nil
	}

	var cmds []tea.Cmd
	if res.BecameWaiting {
		m.notifier.MaybeAlert(
			m.settings.Notifications,
			res.TabIndex, res.TabKnown,
			m.activeTab, m.activeTabKnown,
			notify.Alert{
				TabName:     res.TabName,
				ToolName:    p.ToolName,
				PaneID:      p.PaneID,
				TermProgram: m.termProgram,
			},
		)
		if m.flashes.AnyActive(now) {
			// Restart the tick chain at the fast cadence so the blink starts
			// immediately instead of on the next slow tick.
			m.tickGen++
			cmds = append(cmds, m.tick(session.FastTick))
		}
	}
	return cmds
}

func (m *Model) applyTopology(snap topology.Snapshot) {
	m.tabs = snap.Tabs
	if snap.SessionName != "" {
		m.sessionName = snap.SessionName
	}
	if snap.InputMode != "" {
		m.inputMode = snap.InputMode
	}
	m.activeTab, m.activeTabKnown = snap.ActiveTab()

	m.locator.Rebuild(snap)
	m.registry.RefreshBindings(m.locator)
	m.registry.PruneDead(m.locator, m.flashes)

	valid := make(map[uint32]bool, len(snap.Tabs))
	for _, t := range snap.Tabs {
		valid[uint32(t.Position)] = true
	}
	m.notifier.PruneCooldowns(func(key uint32) bool { return valid[key] })
}

func (m *Model) handleClick(col int) tea.Cmd {
	if m.frame.HitPrefix(col) {
		if m.view == statusbar.ViewNormal {
			m.view = statusbar.ViewSettings
		} else {
			m.view = statusbar.ViewNormal
		}
		return nil
	}

	switch m.view {
	case statusbar.ViewNormal:
		if r := m.frame.HitTab(col); r != nil {
			if r.Waiting {
				_ = m.actions.FocusPane(r.PaneID)
			} else {
				_ = m.actions.SwitchTab(r.TabIndex)
			}
		}

	case statusbar.ViewSettings:
		r := m.frame.HitMenu(col)
		if r == nil {
			return nil
		}
		switch r.Action {
		case statusbar.MenuToggleNotify:
			m.settings.Notifications = m.settings.Notifications.Cycle()
			m.persistAndBroadcast()
		case statusbar.MenuToggleFlash:
			m.settings.Flash = m.settings.Flash.Cycle()
			m.persistAndBroadcast()
		case statusbar.MenuToggleElapsed:
			m.settings.ElapsedTime = !m.settings.ElapsedTime
			m.persistAndBroadcast()
		case statusbar.MenuClose:
			m.view = statusbar.ViewNormal
		}
	}
	return nil
}

// persistAndBroadcast saves and announces a local settings mutation. While
// the initial load is still pending the write is held back, so a first-run
// save cannot clobber a settings file that has not been read yet.
func (m *Model) persistAndBroadcast() {
	if m.loadState == settings.LoadPending {
		m.saveDeferred = true
		return
	}
	if err := settings.Save(m.cfg.SettingsPath(), m.settings); err != nil {
		appLog.Warn("settings_save_failed", slog.String("error", err.Error()))
	}
	if err := m.bus.Publish(bus.ChannelSettings, m.settings); err != nil {
		appLog.Warn("settings_broadcast_failed", slog.String("error", err.Error()))
	}
}

// applyLoadedSettings resolves the startup load race: if the user mutated
// settings before the load finished, the mutation is the newer intent — keep
// it and flush the deferred save; otherwise adopt the loaded value.
func (m *Model) applyLoadedSettings(msg settingsLoadedMsg) {
	m.loadState = msg.state
	if m.saveDeferred {
		m.saveDeferred = false
		m.persistAndBroadcast()
		return
	}
	m.settings = msg.s
}
