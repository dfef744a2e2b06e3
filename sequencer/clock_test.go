package sequencer

import (
	"testing"
	"time"
)

func TestTickInterval(t *testing.T) {
	tests := []struct {
		bpm  float64
		want time.Duration
	}{
		{120, 20833333},
		{240, 10416666},
		{40, 62500000},
		{60, 41666666},
		{0, 0},
		{-10, 0},
	}

	for _, tt := range tests {
		if got := TickInterval(tt.bpm, PPQ); got != tt.want {
			t.Errorf("TickInterval(%v) = %d, want %d", tt.bpm, got, tt.want)
		}
	}
}

func collectTicks(t *testing.T, ticks <-chan int64, n int) []int64 {
	t.Helper()
	var got []int64
	deadline := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case tick := <-ticks:
			got = append(got, tick)
		case <-deadline:
			t.Fatalf("only %d of %d ticks arrived", len(got), n)
		}
	}
	return got
}

func newTestClock() (*Clock, chan int64) {
	ticks := make(chan int64, 4096)
	c := NewClock(func(tick int64) {
		select {
		case ticks <- tick:
		default:
		}
	})
	return c, ticks
}

func TestClockEmitsSequentialTicks(t *testing.T) {
	c, ticks := newTestClock()
	c.Start(MaxTempo)
	defer c.Stop()

	if !c.Running() {
		t.Fatal("clock not running after Start")
	}
	got := collectTicks(t, ticks, 10)
	for i, tick := range got {
		if tick != int64(i) {
			t.Fatalf("ticks %v are not 0, 1, 2...", got)
		}
	}
}

func TestClockStopAndRestart(t *testing.T) {
	c, ticks := newTestClock()
	c.Start(MaxTempo)
	collectTicks(t, ticks, 3)
	c.Stop()

	if c.Running() {
		t.Fatal("clock running after Stop")
	}
	if c.Tick() < 3 {
		t.Errorf("tick counter %d was reset by Stop", c.Tick())
	}

	// drain anything emitted before Stop returned
	for len(ticks) > 0 {
		<-ticks
	}
	c.Start(MaxTempo)
	defer c.Stop()
	if got := collectTicks(t, ticks, 1); got[0] != 0 {
		t.Errorf("first tick after restart = %d, want 0", got[0])
	}
}

func TestClockStartWhileRunningIsNoop(t *testing.T) {
	c, _ := newTestClock()
	c.Start(MaxTempo)
	defer c.Stop()

	c.Start(MinTempo)
	if c.BPM() != MaxTempo {
		t.Errorf("BPM = %v, second Start should be ignored", c.BPM())
	}
}

func TestClockUpdateTempo(t *testing.T) {
	c, ticks := newTestClock()

	c.UpdateTempo(100)
	if c.Running() {
		t.Fatal("UpdateTempo started a stopped clock")
	}

	c.Start(200)
	defer c.Stop()
	collectTicks(t, ticks, 3)

	c.UpdateTempo(MaxTempo)
	if !c.Running() || c.BPM() != MaxTempo {
		t.Errorf("running=%v bpm=%v after UpdateTempo", c.Running(), c.BPM())
	}
}

func TestClockReset(t *testing.T) {
	c, ticks := newTestClock()
	c.Start(MaxTempo)
	collectTicks(t, ticks, 3)
	c.Stop()

	c.Reset()
	if c.Tick() != 0 {
		t.Errorf("Tick() = %d after Reset", c.Tick())
	}
	if c.Running() {
		t.Error("Reset changed run state")
	}
}
