package sequencer

// TrackScheduler is the per-track step state machine. It counts ticks up
// to the track's division and advances the playhead on each boundary.
type TrackScheduler struct {
	accumulator int
	step        int
}

// StepResult describes what one tick did to a track
type StepResult struct {
	Advanced bool // playhead moved
	Playhead int  // step now under the playhead
	Trigger  bool // Step holds a pulse and the track is not muted
	Step     int  // step that was left, the one to trigger
}

// Tick consumes one clock tick for t. On a step boundary the pulse test
// is made against the step being left, not the one being entered, so
// triggers lag the playhead by one boundary.
func (s *TrackScheduler) Tick(t *Track) StepResult {
	s.accumulator++
	if s.accumulator < t.Pattern.Division.TicksPerStep() {
		return StepResult{Playhead: s.step}
	}
	s.accumulator = 0

	steps := t.Pattern.Steps
	if steps < 1 {
		steps = 1
	}
	leaving := s.step
	s.step = (s.step + 1) % steps

	res := StepResult{
		Advanced: true,
		Playhead: s.step,
		Step:     leaving,
	}
	if !t.Muted && hasPulse(t.Pattern.PulsePositions(), leaving) {
		res.Trigger = true
	}
	return res
}

// Reset returns the scheduler to step 0 with an empty accumulator
func (s *TrackScheduler) Reset() {
	s.accumulator = 0
	s.step = 0
}

// Step returns the current playhead position
func (s *TrackScheduler) Step() int {
	return s.step
}
