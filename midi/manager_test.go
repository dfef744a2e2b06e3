package midi

import (
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers/testdrv"
)

func TestSendWithoutOutputIsDropped(t *testing.T) {
	tr := NewTransportWithDriver(nil, "", "", nil)
	if err := tr.Send(NoteOnEvent(1, 60, 100)); err != nil {
		t.Errorf("Send with no output = %v, want nil", err)
	}
	if tr.OutputName() != "" || tr.InputName() != "" {
		t.Error("unconnected transport reports ports")
	}
}

func TestConnectInputWithoutConsumer(t *testing.T) {
	tr := NewTransportWithDriver(nil, "", "", nil)
	if err := tr.ConnectInput(); err != nil {
		t.Errorf("ConnectInput with no inputs channel = %v", err)
	}
}

func TestNoMatchingPort(t *testing.T) {
	drv := testdrv.New("loop")
	inputs := make(chan InputEvent, 1)
	tr := NewTransportWithDriver(drv, "no such synth", "no such pads", inputs)
	defer tr.Close()

	if err := tr.ConnectOutput(); SetupStage(err) != KindPortCreation {
		t.Errorf("ConnectOutput() = %v, want port creation error", err)
	}
	if err := tr.ConnectInput(); SetupStage(err) != KindSourceCreation {
		t.Errorf("ConnectInput() = %v, want source creation error", err)
	}
}

func TestLoopbackMapsInput(t *testing.T) {
	drv := testdrv.New("loop")
	inputs := make(chan InputEvent, InputBuffer)
	tr := NewTransportWithDriver(drv, "LOOP", "", inputs)
	defer tr.Close()

	if err := tr.ConnectInput(); err != nil {
		t.Fatal(err)
	}
	if err := tr.ConnectOutput(); err != nil {
		t.Fatal(err)
	}
	if tr.OutputName() == "" || tr.InputName() == "" {
		t.Fatalf("ports out=%q in=%q", tr.OutputName(), tr.InputName())
	}

	sent := []Event{
		NoteOnEvent(PadChannel, PadBaseNote+4, 90),
		CCEvent(KnobChannel, KnobBaseCC, 127),
		NoteOnEvent(3, 60, 100), // not a pad, dropped
		ClockEvent,
	}
	for _, e := range sent {
		if err := tr.Send(e); err != nil {
			t.Fatal(err)
		}
	}

	want := []InputEvent{
		{Kind: PadPressed, ID: 5},
		{Kind: KnobChanged, ID: 1, Value: 1},
		{Kind: ClockTick},
	}
	for _, w := range want {
		select {
		case got := <-inputs:
			if got != w {
				t.Errorf("got %+v, want %+v", got, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %+v", w)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	tr := NewTransportWithDriver(testdrv.New("loop"), "", "", nil)
	tr.Close()
	tr.Close()
}

func TestLoopbackDeliversClockFirst(t *testing.T) {
	drv := testdrv.New("clock")
	inputs := make(chan InputEvent, InputBuffer)
	tr := NewTransportWithDriver(drv, "CLOCK", "", inputs)
	defer tr.Close()

	if err := tr.ConnectInput(); err != nil {
		t.Fatal(err)
	}
	if err := tr.ConnectOutput(); err != nil {
		t.Fatal(err)
	}

	for _, e := range []Event{ClockEvent, StartEvent, NoteOnEvent(PadChannel, PadBaseNote, 90)} {
		if err := tr.Send(e); err != nil {
			t.Fatal(err)
		}
	}

	want := []InputEvent{
		{Kind: ClockTick},
		{Kind: TransportStart},
		{Kind: PadPressed, ID: 1},
	}
	for _, w := range want {
		select {
		case got := <-inputs:
			if got != w {
				t.Fatalf("got %+v, want %+v", got, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %+v", w)
		}
	}
}
