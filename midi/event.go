package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Type is the MIDI status of an Event. Channel messages carry the status
// nibble with channel 0.
type Type uint8

// MIDI message types
const (
	NoteOff  Type = 0x80
	NoteOn   Type = 0x90
	CC       Type = 0xB0
	Clock    Type = 0xF8
	Start    Type = 0xFA
	Continue Type = 0xFB
	Stop     Type = 0xFC
)

// Event is an abstract MIDI message. Channel is 1-based here and encoded
// 0-based on the wire. For CC, Note is the controller and Velocity the value.
type Event struct {
	Type     Type
	Channel  int
	Note     int
	Velocity int
}

// NoteOnEvent builds a note-on
func NoteOnEvent(channel, note, velocity int) Event {
	return Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity}
}

// NoteOffEvent builds a note-off
func NoteOffEvent(channel, note int) Event {
	return Event{Type: NoteOff, Channel: channel, Note: note}
}

// CCEvent builds a control change
func CCEvent(channel, controller, value int) Event {
	return Event{Type: CC, Channel: channel, Note: controller, Velocity: value}
}

// Realtime messages
var (
	ClockEvent    = Event{Type: Clock}
	StartEvent    = Event{Type: Start}
	StopEvent     = Event{Type: Stop}
	ContinueEvent = Event{Type: Continue}
)

// Bytes encodes the event to wire bytes. Channel and data bytes are
// masked into range rather than rejected.
func (e Event) Bytes() []byte {
	ch := uint8((e.Channel - 1) & 0x0F)
	d1 := uint8(e.Note & 0x7F)
	d2 := uint8(e.Velocity & 0x7F)

	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(ch, d1, d2)
	case NoteOff:
		return gomidi.NoteOff(ch, d1)
	case CC:
		return gomidi.ControlChange(ch, d1, d2)
	case Clock:
		return gomidi.TimingClock()
	case Start:
		return gomidi.Start()
	case Continue:
		return gomidi.Continue()
	case Stop:
		return gomidi.Stop()
	}
	return nil
}

// Message returns the event as a gomidi message for a driver port
func (e Event) Message() gomidi.Message {
	return gomidi.Message(e.Bytes())
}

// Decode parses a raw message into an Event. A note-on with velocity 0
// decodes as note-off. Unsupported messages report false.
func Decode(msg gomidi.Message) (Event, bool) {
	var ch, key, vel, cc, val uint8

	switch {
	case msg.Is(gomidi.TimingClockMsg):
		return ClockEvent, true
	case msg.Is(gomidi.StartMsg):
		return StartEvent, true
	case msg.Is(gomidi.StopMsg):
		return StopEvent, true
	case msg.Is(gomidi.ContinueMsg):
		return ContinueEvent, true
	case msg.GetNoteStart(&ch, &key, &vel):
		return NoteOnEvent(int(ch)+1, int(key), int(vel)), true
	case msg.GetNoteEnd(&ch, &key):
		return NoteOffEvent(int(ch)+1, int(key)), true
	case msg.GetControlChange(&ch, &cc, &val):
		return CCEvent(int(ch)+1, int(cc), int(val)), true
	}
	return Event{}, false
}
