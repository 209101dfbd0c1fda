package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/fanlink/internal/device"
	"github.com/muurk/fanlink/internal/engine"
)

// refreshEvery is how often the view re-reads engine state. The engine
// runs its own reconcile loop; the tick only repaints.
const refreshEvery = 500 * time.Millisecond

type keyMap struct {
	SpeedUp   key.Binding
	SpeedDown key.Binding
	Swing     key.Binding
	Power     key.Binding
	Refresh   key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SpeedUp, k.SpeedDown, k.Swing, k.Power, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SpeedUp, k.SpeedDown, k.Swing},
		{k.Power, k.Refresh, k.Quit},
	}
}

var defaultKeys = keyMap{
	SpeedUp: key.NewBinding(
		key.WithKeys("up", "+"),
		key.WithHelp("↑/+", "speed up"),
	),
	SpeedDown: key.NewBinding(
		key.WithKeys("down", "-"),
		key.WithHelp("↓/-", "speed down"),
	),
	Swing: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "toggle swing"),
	),
	Power: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "toggle power"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the dashboard state. It reads from the engine on every tick
// and sends intents through SetDesired; the reconcile loop does the rest.
type Model struct {
	eng    *engine.Engine
	keys   keyMap
	help   help.Model
	width  int
	status string

	desired   device.State
	confirmed device.State
	inFlight  bool
}

// New creates a dashboard model attached to a running engine.
func New(eng *engine.Engine) Model {
	return Model{
		eng:       eng,
		keys:      defaultKeys,
		help:      help.New(),
		desired:   eng.Desired(),
		confirmed: eng.Confirmed(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.desired = m.eng.Desired()
		m.confirmed = m.eng.Confirmed()
		m.inFlight = m.eng.InFlight()
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.SpeedUp):
			m.setDesired(device.FieldSpeed, m.desired.Speed+1)

		case key.Matches(msg, m.keys.SpeedDown):
			m.setDesired(device.FieldSpeed, m.desired.Speed-1)

		case key.Matches(msg, m.keys.Swing):
			m.setDesired(device.FieldSwing, 1-m.desired.Swing)

		case key.Matches(msg, m.keys.Power):
			m.setDesired(device.FieldPower, 1-m.desired.Power)

		case key.Matches(msg, m.keys.Refresh):
			if err := m.eng.RefreshNow(); err != nil {
				m.status = device.GetShortErrorMessage(err)
			} else {
				m.status = "refreshing..."
			}
		}
		return m, nil
	}
	return m, nil
}

// setDesired pushes an intent and records any validation failure as the
// status line. Out-of-range speeds are clamped so held keys stop at the
// limits instead of erroring.
func (m *Model) setDesired(f device.Field, value int) {
	if f == device.FieldSpeed {
		if value < 0 {
			value = 0
		}
		if value > m.eng.MaxSpeed() {
			value = m.eng.MaxSpeed()
		}
	}
	if err := m.eng.SetDesired(f, value); err != nil {
		m.status = device.GetShortErrorMessage(err)
		return
	}
	m.desired = m.eng.Desired()
	m.status = ""
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(AppName))
	b.WriteString("\n")

	rows := []string{
		m.renderRow("Power", onOff(m.desired.Power), onOff(m.confirmed.Power), m.desired.Power == m.confirmed.Power),
		m.renderRow("Speed", fmt.Sprintf("%d", m.desired.Speed), fmt.Sprintf("%d", m.confirmed.Speed), m.desired.Speed == m.confirmed.Speed),
		m.renderRow("Swing", onOff(m.desired.Swing), onOff(m.confirmed.Swing), m.desired.Swing == m.confirmed.Swing),
	}

	header := LabelStyle.Render("") + LabelStyle.Render("desired") + LabelStyle.Render("device")
	b.WriteString(PanelStyle.Render(header + "\n" + strings.Join(rows, "\n")))
	b.WriteString("\n")

	if m.inFlight {
		b.WriteString(StatusStyle.Render("command in flight..."))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(StatusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderRow(label, desired, confirmed string, synced bool) string {
	valueStyle := SyncedStyle
	mark := ""
	if !synced {
		valueStyle = PendingStyle
		mark = " *"
	}
	return LabelStyle.Render(label) +
		valueStyle.Render(fmt.Sprintf("%-10s", desired)) +
		valueStyle.Render(fmt.Sprintf("%-10s", confirmed)) +
		mark
}

func onOff(v int) string {
	if v == device.PowerOn {
		return "on"
	}
	return "off"
}

// Run starts the dashboard and blocks until the user quits.
func Run(eng *engine.Engine) error {
	p := tea.NewProgram(New(eng), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
