package sequencer

import "math"

// PhraseShape is a pitch contour applied across a pattern's steps
type PhraseShape string

const (
	PhraseCadence1 PhraseShape = "cadence1"
	PhraseCadence2 PhraseShape = "cadence2"
	PhraseCadence3 PhraseShape = "cadence3"
	PhraseCadence4 PhraseShape = "cadence4"
	PhraseSaw      PhraseShape = "saw"
	PhraseTriangle PhraseShape = "triangle"
	PhraseSine     PhraseShape = "sine"
	PhrasePulse    PhraseShape = "pulse"
)

// PhraseShapes in knob order
var PhraseShapes = []PhraseShape{
	PhraseCadence1, PhraseCadence2, PhraseCadence3, PhraseCadence4,
	PhraseSaw, PhraseTriangle, PhraseSine, PhrasePulse,
}

// Cadence degrees as fractions of an octave
var cadences = map[PhraseShape][4]float64{
	PhraseCadence1: {0, 5.0 / 12, 7.0 / 12, 0},        // I-IV-V-I
	PhraseCadence2: {0, 7.0 / 12, 9.0 / 12, 5.0 / 12}, // I-V-vi-IV
	PhraseCadence3: {0, 9.0 / 12, 5.0 / 12, 7.0 / 12}, // I-vi-IV-V
	PhraseCadence4: {0, 5.0 / 12, 9.0 / 12, 7.0 / 12}, // I-IV-vi-V
}

// PhraseOffset returns the semitone offset of shape at step out of
// totalSteps, spanning rangeOct octaves and scaled by amount.
func PhraseOffset(shape PhraseShape, step, totalSteps, rangeOct int, amount float64) int {
	if totalSteps <= 0 || amount <= 0 || rangeOct == 0 {
		return 0
	}

	phase := float64(step) / float64(totalSteps)
	maxOffset := float64(rangeOct * 12)

	var raw float64
	switch shape {
	case PhraseSaw:
		raw = phase * maxOffset
	case PhraseTriangle:
		if phase < 0.5 {
			raw = phase * 2 * maxOffset
		} else {
			raw = (2 - phase*2) * maxOffset
		}
	case PhraseSine:
		raw = math.Sin(phase*2*math.Pi)*maxOffset/2 + maxOffset/2
	case PhrasePulse:
		if phase < 0.5 {
			raw = maxOffset
		}
	default:
		degrees, ok := cadences[shape]
		if !ok {
			return 0
		}
		idx := int(phase*float64(len(degrees))) % len(degrees)
		if idx < 0 {
			idx += len(degrees)
		}
		raw = degrees[idx] * maxOffset
	}

	return int(math.Round(raw * amount))
}

// ComputeMIDINote applies transpose and phrase offset to baseNote and
// quantizes the result to the track's scale, clamped to 0-127.
func ComputeMIDINote(baseNote int, m Melodic, stepInPhrase, totalSteps int) int {
	if totalSteps <= 0 {
		return clampInt(baseNote, 0, 127)
	}
	offset := PhraseOffset(m.PhraseShape, stepInPhrase, totalSteps, m.PhraseRange, m.VoicingAmount)
	note := baseNote + m.Transpose + offset
	return clampInt(QuantizeToScale(note, m.Scale, m.RootNote), 0, 127)
}

// BaseNote is the untransposed root of a track, one octave around middle C
func BaseNote(m Melodic) int {
	return baseOctave + int(m.RootNote)
}
