package sequencer

import (
	"container/heap"
	"math"
	"sync"

	"go-arp/midi"
)

// ActiveNote is a sounding note awaiting its note-off
type ActiveNote struct {
	Channel int
	Note    int
	OffTick int64
}

// pendingNote is a ratchet note-on scheduled for a future tick
type pendingNote struct {
	tick     int64
	seq      uint64 // keeps FIFO order among equal ticks
	channel  int
	note     int
	velocity int
	offTick  int64
}

type pendingQueue []pendingNote

func (q pendingQueue) Len() int { return len(q) }
func (q pendingQueue) Less(i, j int) bool {
	if q[i].tick != q[j].tick {
		return q[i].tick < q[j].tick
	}
	return q[i].seq < q[j].seq
}
func (q pendingQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *pendingQueue) Push(x any)   { *q = append(*q, x.(pendingNote)) }
func (q *pendingQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// NoteManager owns the set of sounding notes and the queue of future
// ratchet note-ons, both keyed by tick. Nothing else holds ActiveNotes.
type NoteManager struct {
	mu      sync.Mutex
	active  []ActiveNote
	pending pendingQueue
	seq     uint64

	send func(midi.Event)
}

// NewNoteManager creates a manager that emits through send
func NewNoteManager(send func(midi.Event)) *NoteManager {
	return &NoteManager{send: send}
}

// Trigger sounds track t's pulse at step on tick. Ratchets landing on tick
// fire now; later ones are queued and fire from Advance on their tick.
func (n *NoteManager) Trigger(t *Track, step int, tick int64) {
	note := ComputeMIDINote(BaseNote(t.Melodic), t.Melodic, step, t.Pattern.Steps)
	ticksPerStep := t.Pattern.Division.TicksPerStep()
	sustainTicks := max(1, int(math.Round(float64(ticksPerStep)*t.Sustain)))

	ratchets := ComputeRepeats(step, t.Repeats, t.Pattern.Division)
	perRepeat := int64(max(1, sustainTicks/len(ratchets)))

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, r := range ratchets {
		offset := int64(math.Round(r.Offset * float64(ticksPerStep)))
		offTick := tick + offset + perRepeat

		if offset == 0 {
			n.noteOn(t.MIDIChannel, note, t.Velocity, offTick)
			continue
		}
		n.seq++
		heap.Push(&n.pending, pendingNote{
			tick:     tick + offset,
			seq:      n.seq,
			channel:  t.MIDIChannel,
			note:     note,
			velocity: t.Velocity,
			offTick:  offTick,
		})
	}
}

// Advance emits note-offs for every note with offTick <= tick, then fires
// queued ratchets due at or before tick.
func (n *NoteManager) Advance(tick int64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	kept := n.active[:0]
	for _, a := range n.active {
		if a.OffTick <= tick {
			n.send(midi.NoteOffEvent(a.Channel, a.Note))
			continue
		}
		kept = append(kept, a)
	}
	n.active = kept

	for len(n.pending) > 0 && n.pending[0].tick <= tick {
		p := heap.Pop(&n.pending).(pendingNote)
		n.noteOn(p.channel, p.note, p.velocity, p.offTick)
	}
}

func (n *NoteManager) noteOn(channel, note, velocity int, offTick int64) {
	n.send(midi.NoteOnEvent(channel, note, velocity))
	n.active = append(n.active, ActiveNote{Channel: channel, Note: note, OffTick: offTick})
}

// Release emits note-off for every sounding note and drops queued ratchets
func (n *NoteManager) Release() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, a := range n.active {
		n.send(midi.NoteOffEvent(a.Channel, a.Note))
	}
	n.active = nil
	n.pending = nil
}

// Panic emits note-off for every note on every track channel and clears
// all bookkeeping unconditionally.
func (n *NoteManager) Panic() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := 1; ch <= NumTracks; ch++ {
		for note := 0; note <= 127; note++ {
			n.send(midi.NoteOffEvent(ch, note))
		}
	}
	n.active = nil
	n.pending = nil
}

// Rebase shifts every stored tick back by delta, moving bookkeeping into
// a clock frame that restarted delta ticks earlier.
func (n *NoteManager) Rebase(delta int64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range n.active {
		n.active[i].OffTick -= delta
	}
	for i := range n.pending {
		n.pending[i].tick -= delta
		n.pending[i].offTick -= delta
	}
	// uniform shift keeps heap order
}

// Active returns a copy of the sounding notes
func (n *NoteManager) Active() []ActiveNote {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ActiveNote, len(n.active))
	copy(out, n.active)
	return out
}

// Pending returns the number of queued ratchet note-ons
func (n *NoteManager) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}
