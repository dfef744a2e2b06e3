package sequencer

import (
	"fmt"
	"math"
	"time"

	"go-arp/debug"
	"go-arp/midi"
)

// Pad assignments
const (
	PadPlay  = 5
	PadTap   = 6
	PadMute  = 7
	PadShift = 8
)

const maxTaps = 4

// tapWindow is how long after a tap the tap pad stays lit
const tapWindow = 2 * time.Second

var (
	normalKnobLabels  = []string{"Steps", "Pulses", "Rotate", "Div", "Repeat", "Vel", "Sustain", "Tempo"}
	melodicKnobLabels = []string{"Pitch", "Scale", "Root", "Voicing", "Style", "Phrase", "Range", "-"}
)

// HandleInput dispatches a mapped controller or transport event
func (m *Manager) HandleInput(ev midi.InputEvent) {
	switch ev.Kind {
	case midi.PadPressed:
		m.PadPressed(ev.ID)
	case midi.PadReleased:
		m.PadReleased(ev.ID)
	case midi.KnobChanged:
		m.KnobChanged(ev.ID, ev.Value)
	case midi.ClockTick:
		m.externalTick()
	case midi.TransportStart:
		m.externalStart()
	case midi.TransportContinue:
		m.externalContinue()
	case midi.TransportStop:
		if m.clockSource() == ClockExternal {
			m.Stop()
		}
	}
}

// PadPressed handles pad id 1-8: 1-4 select a track, 5 toggles play,
// 6 taps tempo, 7 toggles mute on the selected track, 8 holds melodic shift.
func (m *Manager) PadPressed(id int) {
	switch {
	case id >= 1 && id <= NumTracks:
		m.SelectTrack(id)
	case id == PadPlay:
		m.TogglePlay()
	case id == PadTap:
		m.TapTempo()
	case id == PadMute:
		m.ToggleMute()
	case id == PadShift:
		m.SetMelodicShift(true)
	}
}

// PadReleased handles pad release; only the shift pad cares
func (m *Manager) PadReleased(id int) {
	if id == PadShift {
		m.SetMelodicShift(false)
	}
}

// SelectTrack makes track id the target of knobs and mute
func (m *Manager) SelectTrack(id int) {
	if id < 1 || id > NumTracks {
		return
	}
	m.mu.Lock()
	m.state.SelectedTrackID = id
	m.syncKnobs()
	m.mu.Unlock()
	m.notifyUpdate()
}

// ToggleMute flips mute on the selected track
func (m *Manager) ToggleMute() {
	m.mu.Lock()
	t := m.state.SelectedTrack()
	t.Muted = !t.Muted
	debug.Log("input", "track %d muted=%v", t.ID, t.Muted)
	m.mu.Unlock()
	m.notifyUpdate()
}

// SetMelodicShift switches the knobs between rhythm and melodic pages
func (m *Manager) SetMelodicShift(on bool) {
	m.mu.Lock()
	if m.state.MelodicShift == on {
		m.mu.Unlock()
		return
	}
	m.state.MelodicShift = on
	m.syncKnobs()
	m.mu.Unlock()
	m.notifyUpdate()
}

// TapTempo records a tap. With two or more of the last four taps the
// tempo becomes 60 over their mean interval.
func (m *Manager) TapTempo() {
	m.mu.Lock()
	m.tapTimes = append(m.tapTimes, m.now())
	if len(m.tapTimes) > maxTaps {
		m.tapTimes = m.tapTimes[len(m.tapTimes)-maxTaps:]
	}
	n := len(m.tapTimes)
	if n < 2 {
		m.mu.Unlock()
		m.notifyUpdate()
		return
	}
	avg := m.tapTimes[n-1].Sub(m.tapTimes[0]).Seconds() / float64(n-1)
	m.mu.Unlock()

	if avg <= 0 {
		return
	}
	m.SetTempo(60 / avg)
}

// Tapping reports whether the last tap was within tapWindow
func (m *Manager) Tapping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.tapTimes)
	return n > 0 && m.now().Sub(m.tapTimes[n-1]) < tapWindow
}

// KnobChanged applies knob id (1-8) at value in [0,1] to the selected
// track, or to the tempo for knob 8 outside melodic shift.
func (m *Manager) KnobChanged(id int, value float64) {
	if id < 1 || id > midi.NumKnobs {
		return
	}
	value = clampFloat(value, 0, 1)

	m.mu.Lock()
	m.knobs[id-1] = value
	t := m.state.SelectedTrack()
	tempo := false
	switch {
	case m.state.MelodicShift:
		applyMelodicKnob(t, id, value)
	case id == 8:
		tempo = true
	default:
		applyRhythmKnob(t, id, value)
	}
	m.mu.Unlock()

	if tempo {
		m.SetTempo(MinTempo + value*(MaxTempo-MinTempo))
		return
	}
	m.notifyUpdate()
}

func applyRhythmKnob(t *Track, id int, v float64) {
	p := &t.Pattern
	switch id {
	case 1:
		p.Steps = round(v*15) + 1
		p.Pulses = min(p.Pulses, p.Steps)
		p.Rotation = min(p.Rotation, p.Steps-1)
	case 2:
		p.Pulses = round(v * float64(p.Steps))
	case 3:
		p.Rotation = round(v * float64(p.Steps-1))
	case 4:
		p.Division = pick(Divisions, v)
	case 5:
		t.Repeats = round(v * MaxRepeats)
	case 6:
		t.Velocity = max(1, round(v*127))
	case 7:
		t.Sustain = v
	}
}

func applyMelodicKnob(t *Track, id int, v float64) {
	mel := &t.Melodic
	switch id {
	case 1:
		mel.Transpose = round(v*2*MaxTranspose) - MaxTranspose
	case 2:
		mel.Scale = pick(Scales, v)
	case 3:
		mel.RootNote = Note(round(v * 11))
	case 4:
		mel.VoicingAmount = v
	case 5:
		mel.VoicingStyle = pick(VoicingStyles, v)
	case 6:
		mel.PhraseShape = pick(PhraseShapes, v)
	case 7:
		mel.PhraseRange = round(v*2*MaxPhrase) - MaxPhrase
	}
}

// syncKnobs sets the knob positions from the selected track so a page
// switch shows current values (mu held)
func (m *Manager) syncKnobs() {
	t := m.state.SelectedTrack()
	k := &m.knobs
	if m.state.MelodicShift {
		mel := t.Melodic
		k[0] = float64(mel.Transpose+MaxTranspose) / (2 * MaxTranspose)
		k[1] = position(Scales, mel.Scale)
		k[2] = float64(mel.RootNote) / 11
		k[3] = mel.VoicingAmount
		k[4] = position(VoicingStyles, mel.VoicingStyle)
		k[5] = position(PhraseShapes, mel.PhraseShape)
		k[6] = float64(mel.PhraseRange+MaxPhrase) / (2 * MaxPhrase)
		k[7] = 0
		return
	}
	p := t.Pattern
	k[0] = float64(p.Steps-1) / 15
	k[1] = float64(p.Pulses) / float64(p.Steps)
	k[2] = 0
	if p.Steps > 1 {
		k[2] = float64(p.Rotation) / float64(p.Steps-1)
	}
	k[3] = position(Divisions, p.Division)
	k[4] = float64(t.Repeats) / MaxRepeats
	k[5] = float64(t.Velocity) / 127
	k[6] = t.Sustain
	k[7] = (m.state.Tempo - MinTempo) / (MaxTempo - MinTempo)
}

// KnobValues returns the knob positions in [0,1]
func (m *Manager) KnobValues() [midi.NumKnobs]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.knobs
}

// KnobLabels returns the knob names for the active page
func (m *Manager) KnobLabels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.MelodicShift {
		return melodicKnobLabels
	}
	return normalKnobLabels
}

// KnobDisplay returns the value each knob currently controls, formatted
func (m *Manager) KnobDisplay() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.state.SelectedTrack()
	if m.state.MelodicShift {
		mel := t.Melodic
		return []string{
			fmt.Sprintf("%+d", mel.Transpose),
			string(mel.Scale),
			mel.RootNote.Name(),
			fmt.Sprintf("%.0f%%", mel.VoicingAmount*100),
			string(mel.VoicingStyle),
			string(mel.PhraseShape),
			fmt.Sprintf("%+d", mel.PhraseRange),
			"",
		}
	}
	p := t.Pattern
	return []string{
		fmt.Sprintf("%d", p.Steps),
		fmt.Sprintf("%d", p.Pulses),
		fmt.Sprintf("%d", p.Rotation),
		string(p.Division),
		fmt.Sprintf("x%d", t.Repeats+1),
		fmt.Sprintf("%d", t.Velocity),
		fmt.Sprintf("%.0f%%", t.Sustain*100),
		fmt.Sprintf("%.0f", m.state.Tempo),
	}
}

func (m *Manager) clockSource() ClockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ClockSource
}

// externalTick drives the tick handler from incoming MIDI clock
func (m *Manager) externalTick() {
	m.mu.Lock()
	if m.state.ClockSource != ClockExternal || !m.state.Playing {
		m.mu.Unlock()
		return
	}
	tick := m.extTick
	m.extTick++
	m.mu.Unlock()

	m.HandleTick(tick)
}

// externalStart restarts playback from step 0 on MIDI Start
func (m *Manager) externalStart() {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	if m.clockSource() != ClockExternal {
		return
	}
	m.stop()
	m.play()
}

// externalContinue resumes from the current playheads on MIDI Continue
func (m *Manager) externalContinue() {
	m.mu.Lock()
	if m.state.ClockSource != ClockExternal || m.state.Playing {
		m.mu.Unlock()
		return
	}
	m.state.Playing = true
	m.send(midi.ContinueEvent)
	m.mu.Unlock()
	m.notifyUpdate()
}

func round(v float64) int {
	return int(math.Round(v))
}

// pick maps v in [0,1] onto an entry of list
func pick[T any](list []T, v float64) T {
	i := clampInt(round(v*float64(len(list)-1)), 0, len(list)-1)
	return list[i]
}

func position[T comparable](list []T, v T) float64 {
	i := indexOf(list, v)
	if i < 0 || len(list) < 2 {
		return 0
	}
	return float64(i) / float64(len(list)-1)
}
