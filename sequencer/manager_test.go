package sequencer

import (
	"testing"
	"time"

	"go-arp/midi"
)

// newTestManager returns an engine on external clock so ticks are only
// delivered by the test
func newTestManager(t *testing.T) (*Manager, *recorder) {
	t.Helper()
	s := NewState()
	s.ClockSource = ClockExternal
	m := NewManager(s)
	rec := &recorder{}
	m.SetSink(rec)
	t.Cleanup(m.Stop)
	return m, rec
}

func tickN(m *Manager, from, n int64) {
	for i := from; i < from+n; i++ {
		m.HandleTick(i)
	}
}

func noteOnsOn(rec *recorder, ch int) int {
	n := 0
	for _, e := range rec.snapshot() {
		if e.Type == midi.NoteOn && e.Channel == ch {
			n++
		}
	}
	return n
}

func TestManagerPlaysTresillo(t *testing.T) {
	m, rec := newTestManager(t)
	for id := 2; id <= NumTracks; id++ {
		m.SelectTrack(id)
		m.ToggleMute()
	}

	m.Play()
	if first := rec.snapshot()[0]; first != midi.StartEvent {
		t.Fatalf("first event %v, want Start", first)
	}

	tickN(m, 0, 96)

	if got := noteOnsOn(rec, 1); got != 3 {
		t.Errorf("%d note-ons on channel 1, want 3", got)
	}
	for ch := 2; ch <= NumTracks; ch++ {
		if got := noteOnsOn(rec, ch); got != 0 {
			t.Errorf("muted channel %d played %d notes", ch, got)
		}
	}
	if rec.count(midi.Clock) != 0 {
		t.Error("external clock mode echoed MIDI clock")
	}
	if pos := m.Snapshot().PlayheadPositions[1]; pos != 0 {
		t.Errorf("playhead %d after one cycle", pos)
	}
}

func TestManagerIgnoresTicksWhenStopped(t *testing.T) {
	m, rec := newTestManager(t)
	tickN(m, 0, 200)
	if len(rec.snapshot()) != 0 {
		t.Errorf("stopped engine sent %v", rec.snapshot())
	}
}

func TestManagerPlayheadPublished(t *testing.T) {
	m, _ := newTestManager(t)
	m.Play()
	tickN(m, 0, 12*3)

	s := m.Snapshot()
	for id := 1; id <= NumTracks; id++ {
		if s.PlayheadPositions[id] != 3 {
			t.Errorf("track %d playhead %d, want 3", id, s.PlayheadPositions[id])
		}
	}

	select {
	case <-m.Updates():
	default:
		t.Error("no update notification after playhead moved")
	}
}

func TestManagerStopReleasesNotes(t *testing.T) {
	m, rec := newTestManager(t)
	m.SelectTrack(1)
	m.KnobChanged(5, 1) // 8 repeats
	m.Play()
	tickN(m, 0, 12)

	if len(m.ActiveNotes()) == 0 || m.PendingRatchets() == 0 {
		t.Fatalf("active=%d pending=%d before stop", len(m.ActiveNotes()), m.PendingRatchets())
	}
	ons := rec.count(midi.NoteOn)
	m.Stop()

	if m.Playing() {
		t.Fatal("still playing")
	}
	if len(m.ActiveNotes()) != 0 || m.PendingRatchets() != 0 {
		t.Errorf("active=%d pending=%d after stop", len(m.ActiveNotes()), m.PendingRatchets())
	}
	if rec.count(midi.Stop) != 1 {
		t.Error("no MIDI Stop sent")
	}
	if rec.count(midi.NoteOff) != ons {
		t.Errorf("%d note-offs for %d note-ons", rec.count(midi.NoteOff), ons)
	}
}

func TestManagerPanic(t *testing.T) {
	m, rec := newTestManager(t)
	m.Play()
	tickN(m, 0, 12)
	rec.reset()

	m.Panic()
	if got := rec.count(midi.NoteOff); got != NumTracks*128 {
		t.Errorf("%d note-offs, want %d", got, NumTracks*128)
	}
	if len(m.ActiveNotes()) != 0 {
		t.Error("active notes survived panic")
	}
	if !m.Playing() {
		t.Error("panic stopped playback")
	}
}

func TestManagerRebasesOnClockRestart(t *testing.T) {
	m, _ := newTestManager(t)
	m.Play()
	tickN(m, 0, 12) // step 0 fires on tick 11, ends on tick 21

	if got := m.ActiveNotes(); len(got) != 4 || got[0].OffTick != 21 {
		t.Fatalf("active %+v", got)
	}

	// counter restarts at 0 as after a tempo change
	m.HandleTick(0)
	if got := m.ActiveNotes(); got[0].OffTick != 9 {
		t.Errorf("offTick %d after restart, want 9", got[0].OffTick)
	}
}

func TestManagerExternalTransport(t *testing.T) {
	m, rec := newTestManager(t)

	m.HandleInput(midi.InputEvent{Kind: midi.ClockTick})
	if m.Playing() || len(rec.snapshot()) != 0 {
		t.Fatal("clock before Start had an effect")
	}

	m.HandleInput(midi.InputEvent{Kind: midi.TransportStart})
	if !m.Playing() {
		t.Fatal("Start did not begin playback")
	}
	for i := 0; i < 24; i++ {
		m.HandleInput(midi.InputEvent{Kind: midi.ClockTick})
	}
	if pos := m.Snapshot().PlayheadPositions[1]; pos != 2 {
		t.Errorf("playhead %d after 24 clocks, want 2", pos)
	}

	m.HandleInput(midi.InputEvent{Kind: midi.TransportStop})
	if m.Playing() {
		t.Fatal("Stop did not halt playback")
	}

	m.HandleInput(midi.InputEvent{Kind: midi.TransportContinue})
	if !m.Playing() {
		t.Fatal("Continue did not resume")
	}
	for i := 0; i < 12; i++ {
		m.HandleInput(midi.InputEvent{Kind: midi.ClockTick})
	}
	if pos := m.Snapshot().PlayheadPositions[1]; pos != 3 {
		t.Errorf("playhead %d after continue, want 3", pos)
	}

	m.HandleInput(midi.InputEvent{Kind: midi.TransportStart})
	if pos := m.Snapshot().PlayheadPositions[1]; pos != 0 {
		t.Errorf("Start did not rewind, playhead %d", pos)
	}
}

func TestManagerInternalClock(t *testing.T) {
	s := NewState()
	s.Tempo = MaxTempo
	m := NewManager(s)
	rec := &recorder{}
	m.SetSink(rec)

	m.Play()
	deadline := time.Now().Add(2 * time.Second)
	for rec.count(midi.Clock) < 5 {
		if time.Now().After(deadline) {
			m.Stop()
			t.Fatal("no MIDI clock from internal source")
		}
		time.Sleep(5 * time.Millisecond)
	}
	m.SetTempo(200)
	m.Stop()

	events := rec.snapshot()
	if events[0] != midi.StartEvent {
		t.Errorf("first event %v, want Start", events[0])
	}
	if rec.count(midi.Stop) != 1 {
		t.Error("no MIDI Stop")
	}
	if len(m.ActiveNotes()) != 0 {
		t.Error("notes left sounding after stop")
	}
}

func TestManagerToggleClockSource(t *testing.T) {
	m, _ := newTestManager(t)
	m.Play()

	m.ToggleClockSource()
	s := m.Snapshot()
	if s.ClockSource != ClockInternal || s.Playing {
		t.Errorf("source=%s playing=%v", s.ClockSource, s.Playing)
	}
	m.ToggleClockSource()
	if m.Snapshot().ClockSource != ClockExternal {
		t.Error("did not toggle back")
	}
}

func TestManagerNormalizesInitialState(t *testing.T) {
	s := NewState()
	s.Playing = true
	s.Tempo = 900
	s.Tracks[0].Pattern.Steps = 99
	m := NewManager(s)

	got := m.Snapshot()
	if got.Playing || got.Tempo != MaxTempo || got.Tracks[0].Pattern.Steps != MaxSteps {
		t.Errorf("state not normalized: playing=%v tempo=%v steps=%d",
			got.Playing, got.Tempo, got.Tracks[0].Pattern.Steps)
	}
	if s.Tempo != 900 {
		t.Error("NewManager modified caller's state")
	}
}

func TestManagerNilSink(t *testing.T) {
	s := NewState()
	s.ClockSource = ClockExternal
	m := NewManager(s)
	m.Play()
	tickN(m, 0, 50)
	m.Stop()
}
