package sequencer

// Ratchet is one sub-trigger of a pulse; Offset is the fraction of the
// step (0 <= Offset < 1) at which it fires.
type Ratchet struct {
	Step   int
	Offset float64
}

// ComputeRepeats expands a pulse into repeatCount+1 evenly spaced
// ratchets. Negative counts give the single original trigger.
func ComputeRepeats(pulseStep, repeatCount int, division Division) []Ratchet {
	if repeatCount < 0 {
		repeatCount = 0
	}
	total := repeatCount + 1
	ratchets := make([]Ratchet, total)
	for i := range ratchets {
		ratchets[i] = Ratchet{Step: pulseStep, Offset: float64(i) / float64(total)}
	}
	return ratchets
}
