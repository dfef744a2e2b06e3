package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-arp/midi"
	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/widgets"
)

const (
	knobStep   = 1.0 / 24
	fineStep   = 1.0 / 127
	knobWidth  = 8
	panicLabel = "all notes off"
)

// Devices reports MIDI port state; *midi.Transport satisfies it
type Devices interface {
	Events() <-chan midi.DeviceEvent
	OutputName() string
	InputName() string
}

type Model struct {
	Manager  *sequencer.Manager
	Devices  Devices // may be nil
	Theme    *theme.Theme
	keys     keyMap
	knob     int // selected knob, 0-based
	status   string
	help     bool
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(manager *sequencer.Manager, devices Devices, th *theme.Theme) Model {
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		Manager: manager,
		Devices: devices,
		Theme:   th,
		keys:    defaultKeys(),
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.Updates()
		return UpdateMsg{}
	}
}

func ListenForDevices(devices Devices) tea.Cmd {
	if devices == nil {
		return nil
	}
	return func() tea.Msg {
		return DeviceEventMsg(<-devices.Events())
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.Devices),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		m.status = describe(midi.DeviceEvent(msg))
		return m, ListenForDevices(m.Devices)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, k.Track1):
		m.Manager.PadPressed(1)
	case key.Matches(msg, k.Track2):
		m.Manager.PadPressed(2)
	case key.Matches(msg, k.Track3):
		m.Manager.PadPressed(3)
	case key.Matches(msg, k.Track4):
		m.Manager.PadPressed(4)
	case key.Matches(msg, k.Play):
		m.Manager.PadPressed(sequencer.PadPlay)
	case key.Matches(msg, k.Tap):
		m.Manager.PadPressed(sequencer.PadTap)
	case key.Matches(msg, k.Mute):
		m.Manager.PadPressed(sequencer.PadMute)
	case key.Matches(msg, k.Shift):
		// a terminal has no key-up, so the shift pad latches here
		m.Manager.SetMelodicShift(!m.Manager.Snapshot().MelodicShift)

	case key.Matches(msg, k.KnobLeft):
		m.knob = (m.knob + midi.NumKnobs - 1) % midi.NumKnobs
	case key.Matches(msg, k.KnobRight):
		m.knob = (m.knob + 1) % midi.NumKnobs
	case key.Matches(msg, k.KnobUp):
		m.turnKnob(knobStep)
	case key.Matches(msg, k.KnobDown):
		m.turnKnob(-knobStep)
	case key.Matches(msg, k.FineUp):
		m.turnKnob(fineStep)
	case key.Matches(msg, k.FineDown):
		m.turnKnob(-fineStep)

	case key.Matches(msg, k.TempoUp):
		m.Manager.SetTempo(m.Manager.Snapshot().Tempo + 1)
	case key.Matches(msg, k.TempoDown):
		m.Manager.SetTempo(m.Manager.Snapshot().Tempo - 1)
	case key.Matches(msg, k.Clock):
		m.Manager.ToggleClockSource()
		m.status = "clock: " + string(m.Manager.Snapshot().ClockSource)
	case key.Matches(msg, k.Panic):
		m.Manager.Panic()
		m.status = panicLabel
	case key.Matches(msg, k.Help):
		m.help = !m.help
	}
	return m, nil
}

func (m Model) turnKnob(delta float64) {
	values := m.Manager.KnobValues()
	v := max(0, min(1, values[m.knob]+delta))
	m.Manager.KnobChanged(m.knob+1, v)
}

func describe(e midi.DeviceEvent) string {
	dir := "output"
	if e.Dir == midi.DirIn {
		dir = "input"
	}
	switch e.Type {
	case midi.DeviceConnected:
		return fmt.Sprintf("%s connected: %s", dir, e.Port)
	case midi.DeviceDisconnected:
		return fmt.Sprintf("%s disconnected: %s", dir, e.Port)
	default:
		return fmt.Sprintf("%s failed: %v", dir, e.Err)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.Manager.Snapshot()
	th := m.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	selStyle := lipgloss.NewStyle().Foreground(th.Success())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	playState := "STOP"
	if s.Playing {
		playState = "PLAY"
	}
	page := "rhythm"
	if s.MelodicShift {
		page = "melodic"
	}
	header := headerStyle.Render(fmt.Sprintf("go-arp  %s  %3.0fbpm  clock:%s  page:%s",
		playState, s.Tempo, s.ClockSource, page))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.portLine()))
	out.WriteString("\n\n ")
	out.WriteString(m.padLine(padStates(s, m.Manager.Tapping())))
	out.WriteString("\n\n")

	for i := range s.Tracks {
		out.WriteString(m.trackLine(s, &s.Tracks[i]))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	labels := m.Manager.KnobLabels()
	display := m.Manager.KnobDisplay()
	values := m.Manager.KnobValues()
	for i := 0; i < midi.NumKnobs; i++ {
		line := fmt.Sprintf(" %d %-8s %s %s", i+1, labels[i],
			widgets.RenderKnob(values[i], knobWidth, th.Symbols), display[i])
		if i == m.knob {
			line = selStyle.Render(">" + line[1:])
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.status))
	}

	out.WriteString("\n\n")
	if m.help {
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(m.keys.sections())))
	} else {
		out.WriteString(dimStyle.Render("1-4:track  space:play  t:tap  m:mute  tab:page  ←→↑↓:knobs  c:clock  !:panic  ?:help  q:quit"))
	}
	return out.String()
}

func (m Model) trackLine(s sequencer.State, t *sequencer.Track) string {
	th := m.Theme
	style := lipgloss.NewStyle().Foreground(th.Track(t.ID, sequencer.NumTracks))
	if t.Muted {
		style = lipgloss.NewStyle().Foreground(th.Muted())
	}

	marker := " "
	if t.ID == s.SelectedTrackID {
		marker = ">"
	}
	mute := " "
	if t.Muted {
		mute = "M"
	}
	cells := widgets.RenderSteps(t.Pattern.Steps, sequencer.MaxSteps, t.Pattern.PulsePositions(),
		s.PlayheadPositions[t.ID], s.Playing, th.Symbols)

	return fmt.Sprintf("%s%d%s %s  %-4s %s", marker, t.ID, mute, style.Render(cells),
		t.Pattern.Division, t.Melodic.Scale)
}

// padStates mirrors the controller's pads: the selected track, play, a
// recent tap, mute of the selected track and the latched shift
func padStates(s sequencer.State, tapping bool) [midi.NumPads]bool {
	var lit [midi.NumPads]bool
	for i := 1; i <= sequencer.NumTracks; i++ {
		lit[i-1] = s.SelectedTrackID == i
	}
	lit[sequencer.PadPlay-1] = s.Playing
	lit[sequencer.PadTap-1] = tapping
	for _, t := range s.Tracks {
		if t.ID == s.SelectedTrackID {
			lit[sequencer.PadMute-1] = t.Muted
		}
	}
	lit[sequencer.PadShift-1] = s.MelodicShift
	return lit
}

func (m Model) padLine(lit [midi.NumPads]bool) string {
	th := m.Theme
	colors := make([]theme.RGB, len(lit))
	symbols := make([]rune, len(lit))
	for i, on := range lit {
		if !on {
			colors[i] = th.RGB(theme.RoleMuted)
			symbols[i] = th.Symbols.PadOff
			continue
		}
		colors[i] = th.RGB(theme.RoleAccent)
		if i < sequencer.NumTracks {
			colors[i] = th.TrackRGB(i+1, sequencer.NumTracks)
		}
		symbols[i] = th.Symbols.PadOn
	}
	return widgets.RenderPadRow(colors, symbols)
}

func (m Model) portLine() string {
	if m.Devices == nil {
		return "midi: offline"
	}
	out, in := m.Devices.OutputName(), m.Devices.InputName()
	if out == "" {
		out = "-"
	}
	if in == "" {
		in = "-"
	}
	return fmt.Sprintf("out: %s  in: %s", out, in)
}
