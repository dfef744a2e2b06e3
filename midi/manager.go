package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-arp/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// DeviceEvent is emitted when a port connects/disconnects
type DeviceEvent struct {
	Type DeviceEventType
	Dir  Direction
	Port string
	Err  error // set on DeviceFailed
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
	DeviceFailed
)

// Direction of a port
type Direction int

const (
	DirOut Direction = iota
	DirIn
)

// InputBuffer is the suggested capacity of an inputs channel; it holds
// a few beats of external clock
const InputBuffer = 256

// Transport owns the MIDI output sink and input source. Either may be
// absent: sends are dropped and nothing is read until a matching port
// shows up. Inputs are pushed into a channel owned by the consumer.
type Transport struct {
	drv      drivers.Driver
	outMatch string
	inMatch  string

	mu      sync.RWMutex
	outName string
	send    func(gomidi.Message) error
	inName  string
	stopIn  func()

	inputs    chan<- InputEvent
	events    chan DeviceEvent
	pollRate  time.Duration
	closeOnce sync.Once
}

// NewTransport creates the rtmidi client. outPort/inPort are matched
// case-insensitively as substrings of port names; "" takes the first port.
func NewTransport(outPort, inPort string, inputs chan<- InputEvent) (*Transport, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, setupError(err, KindClientCreation, "could not create midi client", "The MIDI driver could not be initialised")
	}
	return NewTransportWithDriver(drv, outPort, inPort, inputs), nil
}

// NewTransportWithDriver creates a transport on an existing driver
func NewTransportWithDriver(drv drivers.Driver, outPort, inPort string, inputs chan<- InputEvent) *Transport {
	return &Transport{
		drv:      drv,
		outMatch: strings.ToLower(outPort),
		inMatch:  strings.ToLower(inPort),
		inputs:   inputs,
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of port connect/disconnect events
func (t *Transport) Events() <-chan DeviceEvent {
	return t.events
}

// OutputName returns the connected output port ("" if absent)
func (t *Transport) OutputName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.outName
}

// InputName returns the connected input port ("" if absent)
func (t *Transport) InputName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inName
}

// Send encodes and sends e. Without an output port the event is dropped.
func (t *Transport) Send(e Event) error {
	t.mu.RLock()
	send := t.send
	t.mu.RUnlock()

	if send == nil {
		return nil
	}
	return send(e.Message())
}

// ConnectOutput opens the first output port matching the configured name
func (t *Transport) ConnectOutput() error {
	outs, err := t.drv.Outs()
	if err != nil {
		return setupError(err, KindPortCreation, "could not list output ports", "MIDI output ports are unavailable")
	}
	for _, out := range outs {
		if !matches(out.String(), t.outMatch) {
			continue
		}
		send, err := gomidi.SendTo(out)
		if err != nil {
			return setupError(err, KindPortCreation, "could not open output port", "Output port "+out.String()+" could not be opened")
		}
		t.mu.Lock()
		t.send = send
		t.outName = out.String()
		t.mu.Unlock()
		debug.Log("midi", "output connected: %s", out.String())
		return nil
	}
	return setupError(nil, KindPortCreation, "no matching output port", "No MIDI output matches "+t.outMatch)
}

// ConnectInput starts listening on the first input port matching the
// configured name. Mapped events go to the inputs channel, dropped if full.
func (t *Transport) ConnectInput() error {
	if t.inputs == nil {
		return nil
	}
	ins, err := t.drv.Ins()
	if err != nil {
		return setupError(err, KindSourceCreation, "could not list input ports", "MIDI input ports are unavailable")
	}
	for _, in := range ins {
		if !matches(in.String(), t.inMatch) {
			continue
		}
		// timing clock and start/stop are filtered by the driver unless asked for
		stop, err := gomidi.ListenTo(in, t.receive, gomidi.UseTimeCode())
		if err != nil {
			return setupError(err, KindSourceCreation, "could not listen to input port", "Input port "+in.String()+" could not be opened")
		}
		t.mu.Lock()
		t.stopIn = stop
		t.inName = in.String()
		t.mu.Unlock()
		debug.Log("midi", "input connected: %s", in.String())
		return nil
	}
	return setupError(nil, KindSourceCreation, "no matching input port", "No MIDI input matches "+t.inMatch)
}

func (t *Transport) receive(msg gomidi.Message, timestampms int32) {
	e, ok := Decode(msg)
	if !ok {
		return
	}
	ev, ok := MapEvent(e)
	if !ok {
		return
	}
	select {
	case t.inputs <- ev:
	default:
		debug.LogEvery(100, "midi", "input channel full, dropped kind=%d", ev.Kind)
	}
}

// Run polls for ports appearing and disappearing (blocking - run in goroutine)
func (t *Transport) Run(ctx context.Context) {
	ticker := time.NewTicker(t.pollRate)
	defer ticker.Stop()

	t.scan()

	for {
		select {
		case <-ctx.Done():
			t.Close()
			return
		case <-ticker.C:
			t.scan()
		}
	}
}

func (t *Transport) scan() {
	// Port listing can hang on some platforms; give up on this pass if so
	type portsResult struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan portsResult, 1)
	go func() {
		ins, _ := t.drv.Ins()
		outs, _ := t.drv.Outs()
		ch <- portsResult{ins: ins, outs: outs}
	}()

	var res portsResult
	select {
	case res = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("midi", "port scan timed out")
		return
	}

	outName, inName := t.OutputName(), t.InputName()

	if outName != "" && !containsPort(res.outs, outName) {
		t.mu.Lock()
		t.send = nil
		t.outName = ""
		t.mu.Unlock()
		t.emit(DeviceEvent{Type: DeviceDisconnected, Dir: DirOut, Port: outName})
		outName = ""
	}
	if outName == "" && anyMatch(res.outs, t.outMatch) {
		if err := t.ConnectOutput(); err != nil {
			t.emit(DeviceEvent{Type: DeviceFailed, Dir: DirOut, Err: err})
		} else {
			t.emit(DeviceEvent{Type: DeviceConnected, Dir: DirOut, Port: t.OutputName()})
		}
	}

	if t.inputs == nil {
		return
	}
	if inName != "" && !containsPort(res.ins, inName) {
		t.closeInput()
		t.emit(DeviceEvent{Type: DeviceDisconnected, Dir: DirIn, Port: inName})
		inName = ""
	}
	if inName == "" && anyMatch(res.ins, t.inMatch) {
		if err := t.ConnectInput(); err != nil {
			t.emit(DeviceEvent{Type: DeviceFailed, Dir: DirIn, Err: err})
		} else {
			t.emit(DeviceEvent{Type: DeviceConnected, Dir: DirIn, Port: t.InputName()})
		}
	}
}

func (t *Transport) emit(e DeviceEvent) {
	select {
	case t.events <- e:
	default:
	}
}

func (t *Transport) closeInput() {
	t.mu.Lock()
	stop := t.stopIn
	t.stopIn = nil
	t.inName = ""
	t.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Close stops listening, drops the output and closes the driver
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.closeInput()
		t.mu.Lock()
		t.send = nil
		t.outName = ""
		t.mu.Unlock()
		err = t.drv.Close()
	})
	return err
}

func matches(name, match string) bool {
	return match == "" || strings.Contains(strings.ToLower(name), match)
}

func anyMatch[P interface{ String() string }](ports []P, match string) bool {
	for _, p := range ports {
		if matches(p.String(), match) {
			return true
		}
	}
	return false
}

func containsPort[P interface{ String() string }](ports []P, name string) bool {
	for _, p := range ports {
		if p.String() == name {
			return true
		}
	}
	return false
}
