package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-arp/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	match := ""
	if len(os.Args) > 2 {
		match = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor(match)
	case "panic":
		panicOut(match)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list            - List all MIDI ports")
	fmt.Println("  monitor [port]  - Print controller events as the sequencer sees them")
	fmt.Println("  panic [port]    - Send note-off for every note on channels 1-4")
	fmt.Println("  poll            - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! Port listing is hung.")
	}
}

func findPort[P interface{ String() string }](ports []P, match string) (P, bool) {
	match = strings.ToLower(match)
	for _, p := range ports {
		if match == "" || strings.Contains(strings.ToLower(p.String()), match) {
			return p, true
		}
	}
	var zero P
	return zero, false
}

func monitor(match string) {
	in, ok := findPort(gomidi.GetInPorts(), match)
	if !ok {
		fmt.Printf("No input port matches %q\n", match)
		return
	}
	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.String())

	clocks := 0
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		e, ok := midi.Decode(msg)
		if !ok {
			fmt.Printf("  [ignored] %s\n", msg)
			return
		}
		ev, ok := midi.MapEvent(e)
		if !ok {
			fmt.Printf("  [unmapped] %s\n", msg)
			return
		}
		switch ev.Kind {
		case midi.ClockTick:
			// one line per quarter note
			clocks++
			if clocks%24 == 0 {
				fmt.Printf("  clock x24\n")
			}
		case midi.PadPressed:
			fmt.Printf("  pad %d down\n", ev.ID)
		case midi.PadReleased:
			fmt.Printf("  pad %d up\n", ev.ID)
		case midi.KnobChanged:
			fmt.Printf("  knob %d = %.3f\n", ev.ID, ev.Value)
		case midi.TransportStart:
			clocks = 0
			fmt.Println("  start")
		case midi.TransportStop:
			fmt.Println("  stop")
		case midi.TransportContinue:
			fmt.Println("  continue")
		}
	}, gomidi.UseTimeCode())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}

func panicOut(match string) {
	out, ok := findPort(gomidi.GetOutPorts(), match)
	if !ok {
		fmt.Printf("No output port matches %q\n", match)
		return
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	sent := 0
	for ch := 1; ch <= 4; ch++ {
		for note := 0; note <= 127; note++ {
			if err := send(midi.NoteOffEvent(ch, note).Message()); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			sent++
		}
	}
	fmt.Printf("Sent %d note-offs to %s\n", sent, out.String())
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a controller to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		var inNames, outNames []string
		for _, p := range gomidi.GetInPorts() {
			inNames = append(inNames, p.String())
		}
		for _, p := range gomidi.GetOutPorts() {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
