package sequencer

import (
	"go-arp/midi"
)

// Sink is the MIDI output the engine pushes clock, transport and note
// events into. Its transport is external; a nil Sink drops everything.
type Sink interface {
	Send(e midi.Event) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(e midi.Event) error

// Send calls f(e)
func (f SinkFunc) Send(e midi.Event) error {
	return f(e)
}
