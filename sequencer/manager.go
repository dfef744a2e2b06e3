package sequencer

import (
	"context"
	"sync"
	"time"

	"go-arp/debug"
	"go-arp/midi"
)

// Manager is the sequencing engine. All tick-driven mutation (track
// accumulators, playheads, pulse checks, note-ons, note-off flushes) runs
// under mu in tick order; collaborators read immutable snapshots.
type Manager struct {
	mu         sync.Mutex
	state      State
	schedulers [NumTracks]TrackScheduler
	notes      *NoteManager

	// ctl serializes transport control (play/stop/tempo) and the clock
	// start/stop calls it makes. Never taken on the tick path.
	ctl   sync.Mutex
	clock *Clock

	sinkMu sync.RWMutex
	sink   Sink

	knobs    [midi.NumKnobs]float64
	tapTimes []time.Time
	now      func() time.Time

	ticked   bool  // a tick has been handled since play
	lastTick int64 // last tick handled in the current clock frame
	extTick  int64 // next external clock tick ID

	inputChan chan midi.InputEvent

	// Notify collaborators of state changes
	UpdateChan chan struct{}
}

// NewManager creates a stopped engine over state. The state is normalized
// and its playing flag cleared.
func NewManager(state State) *Manager {
	state = state.Clone()
	state.Normalize()
	state.Playing = false

	m := &Manager{
		state:      state,
		now:        time.Now,
		inputChan:  make(chan midi.InputEvent, midi.InputBuffer),
		UpdateChan: make(chan struct{}, 1),
	}
	m.notes = NewNoteManager(m.send)
	m.clock = NewClock(m.HandleTick)
	for i := range m.schedulers {
		m.schedulers[i].step = state.PlayheadPositions[i+1]
	}
	m.syncKnobs()
	return m
}

// SetSink sets the MIDI output; nil drops all output
func (m *Manager) SetSink(s Sink) {
	m.sinkMu.Lock()
	m.sink = s
	m.sinkMu.Unlock()
}

func (m *Manager) send(e midi.Event) {
	m.sinkMu.RLock()
	s := m.sink
	m.sinkMu.RUnlock()

	if s == nil {
		return
	}
	if err := s.Send(e); err != nil {
		debug.LogEvery(100, "send", "send failed: %v", err)
	}
}

// Inputs returns the channel transports push mapped input events into.
// The manager owns it; senders should drop rather than block when full.
func (m *Manager) Inputs() chan<- midi.InputEvent {
	return m.inputChan
}

// Run consumes input events until ctx is done (blocking - run in goroutine)
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.inputChan:
			m.HandleInput(ev)
		}
	}
}

// Updates returns a channel signalled (coalesced) after state changes
func (m *Manager) Updates() <-chan struct{} {
	return m.UpdateChan
}

func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// Snapshot returns a deep copy of the current state
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// ActiveNotes returns the notes currently sounding
func (m *Manager) ActiveNotes() []ActiveNote {
	return m.notes.Active()
}

// PendingRatchets returns how many ratchet note-ons are queued
func (m *Manager) PendingRatchets() int {
	return m.notes.Pending()
}

// Play starts playback from step 0: sends MIDI Start and, on the internal
// clock source, starts the clock.
func (m *Manager) Play() {
	m.ctl.Lock()
	defer m.ctl.Unlock()
	m.play()
}

func (m *Manager) play() {
	m.mu.Lock()
	if m.state.Playing {
		m.mu.Unlock()
		return
	}
	m.resetPlayback()
	m.state.Playing = true
	m.send(midi.StartEvent)
	internal := m.state.ClockSource == ClockInternal
	bpm := m.state.Tempo
	m.mu.Unlock()

	debug.Log("transport", "play bpm=%.1f internal=%v", bpm, internal)
	m.notifyUpdate()
	if internal {
		m.clock.Start(bpm)
	}
}

// resetPlayback rewinds every track (mu held)
func (m *Manager) resetPlayback() {
	for i := range m.schedulers {
		m.schedulers[i].Reset()
		m.state.PlayheadPositions[i+1] = 0
	}
	m.ticked = false
	m.lastTick = 0
	m.extTick = 0
}

// Stop halts the clock, sends MIDI Stop, releases every sounding note
// and drops queued ratchets.
func (m *Manager) Stop() {
	m.ctl.Lock()
	defer m.ctl.Unlock()
	m.stop()
}

func (m *Manager) stop() {
	m.mu.Lock()
	if !m.state.Playing {
		m.mu.Unlock()
		return
	}
	m.state.Playing = false
	m.mu.Unlock()

	// must not hold mu: the clock goroutine may be waiting on it
	m.clock.Stop()

	m.mu.Lock()
	m.send(midi.StopEvent)
	m.notes.Release()
	m.mu.Unlock()

	debug.Log("transport", "stop")
	m.notifyUpdate()
}

// TogglePlay starts or stops playback
func (m *Manager) TogglePlay() {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	if m.Playing() {
		m.stop()
	} else {
		m.play()
	}
}

// Playing reports whether the sequencer is running
func (m *Manager) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Playing
}

// SetTempo sets the BPM, clamped to 40-240. A running internal clock is
// restarted at the new tempo.
func (m *Manager) SetTempo(bpm float64) {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	m.mu.Lock()
	m.state.Tempo = clampFloat(bpm, MinTempo, MaxTempo)
	bpm = m.state.Tempo
	restart := m.state.Playing && m.state.ClockSource == ClockInternal
	m.syncKnobs()
	m.mu.Unlock()

	m.notifyUpdate()
	if restart {
		m.clock.UpdateTempo(bpm)
	}
}

// ToggleClockSource switches between internal and external clock.
// Playback is stopped first.
func (m *Manager) ToggleClockSource() {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	m.stop()

	m.mu.Lock()
	if m.state.ClockSource == ClockInternal {
		m.state.ClockSource = ClockExternal
	} else {
		m.state.ClockSource = ClockInternal
	}
	m.mu.Unlock()
	m.notifyUpdate()
}

// Panic sends note-off for every note on every track channel and forgets
// all sounding and queued notes. Playback continues.
func (m *Manager) Panic() {
	m.mu.Lock()
	m.notes.Panic()
	m.mu.Unlock()
	debug.Log("transport", "panic")
}

// HandleTick processes one clock tick: MIDI clock out (internal source),
// note-off flush and due ratchets, then every track's step machine.
func (m *Manager) HandleTick(tick int64) {
	m.mu.Lock()
	if !m.state.Playing {
		m.mu.Unlock()
		return
	}

	// The clock restarts its counter at 0 on tempo changes; move pending
	// note bookkeeping into the new frame.
	if m.ticked && tick <= m.lastTick {
		delta := m.lastTick + 1 - tick
		m.notes.Rebase(delta)
		debug.Log("clock", "tick frame restarted, rebased by %d", delta)
	}
	m.ticked = true
	m.lastTick = tick

	if m.state.ClockSource == ClockInternal {
		m.send(midi.ClockEvent)
	}
	m.notes.Advance(tick)

	moved := false
	for i := range m.state.Tracks {
		t := &m.state.Tracks[i]
		res := m.schedulers[i].Tick(t)
		if !res.Advanced {
			continue
		}
		moved = true
		m.state.PlayheadPositions[t.ID] = res.Playhead
		if res.Trigger {
			m.notes.Trigger(t, res.Step, tick)
		}
	}
	m.mu.Unlock()

	debug.LogEvery(PPQ*16, "tick", "tick=%d", tick)
	if moved {
		m.notifyUpdate()
	}
}
