package midi

// Fixed controller mapping (AKAI LPD8 MKII, program 1)
const (
	PadChannel  = 10 // pads send notes on channel 10
	PadBaseNote = 36 // notes 36-43 -> pads 1-8
	KnobChannel = 1  // knobs send CCs on channel 1
	KnobBaseCC  = 70 // CC 70-77 -> knobs 1-8
	NumPads     = 8
	NumKnobs    = 8
)

// InputKind identifies what an InputEvent carries
type InputKind int

const (
	PadPressed InputKind = iota
	PadReleased
	KnobChanged
	ClockTick
	TransportStart
	TransportStop
	TransportContinue
)

// InputEvent is a controller or transport event after mapping.
// ID is the 1-based pad or knob; Value is the knob position in [0,1].
type InputEvent struct {
	Kind  InputKind
	ID    int
	Value float64
}

// MapEvent translates a decoded MIDI event into an InputEvent. Events
// outside the fixed pad/knob table report false.
func MapEvent(e Event) (InputEvent, bool) {
	switch e.Type {
	case Clock:
		return InputEvent{Kind: ClockTick}, true
	case Start:
		return InputEvent{Kind: TransportStart}, true
	case Stop:
		return InputEvent{Kind: TransportStop}, true
	case Continue:
		return InputEvent{Kind: TransportContinue}, true
	case NoteOn, NoteOff:
		pad, ok := padID(e)
		if !ok {
			return InputEvent{}, false
		}
		if e.Type == NoteOn && e.Velocity > 0 {
			return InputEvent{Kind: PadPressed, ID: pad}, true
		}
		return InputEvent{Kind: PadReleased, ID: pad}, true
	case CC:
		if e.Channel != KnobChannel || e.Note < KnobBaseCC || e.Note >= KnobBaseCC+NumKnobs {
			return InputEvent{}, false
		}
		return InputEvent{
			Kind:  KnobChanged,
			ID:    e.Note - KnobBaseCC + 1,
			Value: float64(e.Velocity&0x7F) / 127.0,
		}, true
	}
	return InputEvent{}, false
}

func padID(e Event) (int, bool) {
	if e.Channel != PadChannel || e.Note < PadBaseNote || e.Note >= PadBaseNote+NumPads {
		return 0, false
	}
	return e.Note - PadBaseNote + 1, true
}
