package sequencer

// Scale names a set of semitone intervals above the root
type Scale string

const (
	ScaleChromatic  Scale = "chromatic"
	ScaleMajor      Scale = "major"
	ScaleMinor      Scale = "minor"
	ScalePentatonic Scale = "pentatonic"
	ScaleHirajoshi  Scale = "hirajoshi"
	ScaleIwato      Scale = "iwato"
	ScaleTetratonic Scale = "tetratonic"
)

// Scales in knob order
var Scales = []Scale{
	ScaleChromatic, ScaleMajor, ScaleMinor, ScalePentatonic,
	ScaleHirajoshi, ScaleIwato, ScaleTetratonic,
}

// Scale definitions - intervals from root (semitones), ascending
var scaleIntervals = map[Scale][]int{
	ScaleChromatic:  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	ScaleMajor:      {0, 2, 4, 5, 7, 9, 11},
	ScaleMinor:      {0, 2, 3, 5, 7, 8, 10},
	ScalePentatonic: {0, 2, 4, 7, 9},
	ScaleHirajoshi:  {0, 2, 3, 7, 8},
	ScaleIwato:      {0, 1, 5, 6, 10},
	ScaleTetratonic: {0, 3, 5, 7},
}

// Intervals returns the scale's intervals; unknown scales have none
func (s Scale) Intervals() []int {
	return scaleIntervals[s]
}

func (s Scale) valid() bool {
	_, ok := scaleIntervals[s]
	return ok
}

// QuantizeToScale snaps midiNote to the nearest scale member within its
// octave (measured from root). Ties go to the earlier interval. A scale
// without intervals leaves the note unchanged.
func QuantizeToScale(midiNote int, scale Scale, root Note) int {
	intervals := scale.Intervals()
	if len(intervals) == 0 {
		return midiNote
	}

	noteInOctave := ((midiNote-int(root))%12 + 12) % 12
	// octaveBase already sits on the root of the note's octave
	octaveBase := midiNote - noteInOctave

	best := intervals[0]
	bestDist := abs(noteInOctave - best)
	for _, iv := range intervals[1:] {
		if d := abs(noteInOctave - iv); d < bestDist {
			best, bestDist = iv, d
		}
	}
	return clampInt(octaveBase+best, 0, 127)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
