package sequencer

import (
	"runtime"
	"sync"
	"time"
)

// PPQ is the number of clock ticks per quarter note (MIDI standard)
const PPQ = 24

// TickInterval returns the time between ticks at bpm, truncated to whole
// nanoseconds. Non-positive inputs give 0.
func TickInterval(bpm float64, ppq int) time.Duration {
	if bpm <= 0 || ppq <= 0 {
		return 0
	}
	return time.Duration(60_000_000_000 / (bpm * float64(ppq)))
}

// Clock emits strictly increasing tick IDs, starting at 0, at a
// tempo-derived interval. onTick runs on the clock's own goroutine and
// must not call Stop or UpdateTempo.
type Clock struct {
	mu      sync.Mutex
	tick    int64
	running bool
	bpm     float64
	stop    chan struct{}
	done    chan struct{}

	onTick func(tick int64)
}

// NewClock creates a stopped clock that reports ticks to onTick
func NewClock(onTick func(tick int64)) *Clock {
	return &Clock{onTick: onTick}
}

// Start begins emitting ticks at bpm from tick 0. No-op if already running.
func (c *Clock) Start(bpm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	interval := TickInterval(bpm, PPQ)
	if c.running || interval <= 0 {
		return
	}

	c.tick = 0
	c.running = true
	c.bpm = bpm
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(interval, c.stop, c.done)
}

// Stop halts emission and waits for the tick goroutine to exit. The tick
// counter is left where it was.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stop)
	done := c.done
	c.mu.Unlock()

	<-done
}

// Reset sets the tick counter to 0 without touching run state
func (c *Clock) Reset() {
	c.mu.Lock()
	c.tick = 0
	c.mu.Unlock()
}

// UpdateTempo restarts a running clock at bpm. The restart resets the
// tick counter to 0, so callers holding absolute tick values must rebase.
func (c *Clock) UpdateTempo(bpm float64) {
	if !c.Running() {
		return
	}
	c.Stop()
	c.Start(bpm)
}

// Running reports whether the clock is emitting ticks
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Tick returns the next tick ID to be emitted
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// BPM returns the tempo of the current (or last) run
func (c *Clock) BPM() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bpm
}

// run fires ticks against absolute deadlines (start + n*interval) so
// timer jitter does not accumulate into drift.
func (c *Clock) run(interval time.Duration, stop, done chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for n := int64(1); ; n++ {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		c.mu.Lock()
		select {
		case <-stop:
			c.mu.Unlock()
			return
		default:
		}
		tick := c.tick
		c.tick++
		c.mu.Unlock()

		if c.onTick != nil {
			c.onTick(tick)
		}

		timer.Reset(time.Until(start.Add(time.Duration(n) * interval)))
	}
}
