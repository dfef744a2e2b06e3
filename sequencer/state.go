package sequencer

import "math"

// NumTracks is the fixed number of tracks; track N always plays on MIDI channel N
const NumTracks = 4

// Value ranges
const (
	MinSteps     = 1
	MaxSteps     = 16
	MinTempo     = 40.0
	MaxTempo     = 240.0
	DefaultTempo = 120.0
	MaxRepeats   = 8
	MaxTranspose = 24
	MaxPhrase    = 3
	baseOctave   = 60 // middle C
)

// Division is the note length each step represents
type Division string

const (
	DivisionWhole        Division = "1/1"
	DivisionHalf         Division = "1/2"
	DivisionQuarter      Division = "1/4"
	DivisionEighth       Division = "1/8"
	DivisionSixteenth    Division = "1/16"
	DivisionThirtySecond Division = "1/32"
)

// Divisions in knob order
var Divisions = []Division{
	DivisionWhole, DivisionHalf, DivisionQuarter,
	DivisionEighth, DivisionSixteenth, DivisionThirtySecond,
}

// TicksPerStep returns how many clock ticks one step lasts at PPQ 24.
// Unknown divisions step as eighths.
func (d Division) TicksPerStep() int {
	switch d {
	case DivisionWhole:
		return PPQ * 4
	case DivisionHalf:
		return PPQ * 2
	case DivisionQuarter:
		return PPQ
	case DivisionEighth:
		return PPQ / 2
	case DivisionSixteenth:
		return PPQ / 4
	case DivisionThirtySecond:
		return PPQ / 8
	default:
		return PPQ / 2
	}
}

func (d Division) valid() bool {
	return indexOf(Divisions, d) >= 0
}

// Note is a root pitch class, C=0 .. B=11
type Note int

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns the display name of the pitch class
func (n Note) Name() string {
	if n < 0 || int(n) >= len(noteNames) {
		return "?"
	}
	return noteNames[n]
}

// VoicingStyle selects how voicing amount is applied
type VoicingStyle string

const (
	VoicingFixed VoicingStyle = "fixed"
	VoicingRamp  VoicingStyle = "ramp"
	VoicingClimb VoicingStyle = "climb"
)

// VoicingStyles in knob order
var VoicingStyles = []VoicingStyle{VoicingFixed, VoicingRamp, VoicingClimb}

// ClockSource selects what drives the tick handler
type ClockSource string

const (
	ClockInternal ClockSource = "internal"
	ClockExternal ClockSource = "external"
)

// Pattern is the euclidean rhythm configuration of a track
type Pattern struct {
	Steps    int      `json:"steps"`
	Pulses   int      `json:"pulses"`
	Rotation int      `json:"rotation"`
	Division Division `json:"division"`
}

// PulsePositions returns the rotated pulse indices of the pattern
func (p Pattern) PulsePositions() []int {
	return EuclideanPattern(p.Steps, p.Pulses, p.Rotation)
}

// Melodic holds the pitch configuration of a track
type Melodic struct {
	Transpose     int          `json:"transpose"`
	Scale         Scale        `json:"scale"`
	RootNote      Note         `json:"rootNote"`
	VoicingAmount float64      `json:"voicingAmount"`
	VoicingStyle  VoicingStyle `json:"voicingStyle"`
	PhraseShape   PhraseShape  `json:"phraseShape"`
	PhraseRange   int          `json:"phraseRange"`
}

// Track is one of the four sequencer voices
type Track struct {
	ID          int     `json:"id"`
	Pattern     Pattern `json:"pattern"`
	Melodic     Melodic `json:"melodic"`
	Velocity    int     `json:"velocity"`
	Sustain     float64 `json:"sustain"`
	Repeats     int     `json:"repeats"`
	Muted       bool    `json:"isMuted"`
	MIDIChannel int     `json:"midiChannel"`
}

// State is the root sequencer state, read by the engine every tick
type State struct {
	Tracks            [NumTracks]Track `json:"tracks"`
	Tempo             float64          `json:"tempo"`
	Playing           bool             `json:"isPlaying"`
	ClockSource       ClockSource      `json:"clockSource"`
	SelectedTrackID   int              `json:"selectedTrackId"`
	MelodicShift      bool             `json:"isMelodicShiftActive"`
	PlayheadPositions map[int]int      `json:"playheadPositions"`
}

// DefaultTrack returns the factory settings for track id
func DefaultTrack(id int) Track {
	return Track{
		ID: id,
		Pattern: Pattern{
			Steps:    8,
			Pulses:   3,
			Rotation: 0,
			Division: DivisionEighth,
		},
		Melodic: Melodic{
			Scale:        ScaleChromatic,
			RootNote:     0,
			VoicingStyle: VoicingFixed,
			PhraseShape:  PhraseCadence1,
		},
		Velocity:    100,
		Sustain:     0.8,
		Repeats:     0,
		MIDIChannel: id,
	}
}

// NewState creates a new state with defaults
func NewState() State {
	s := State{
		Tempo:             DefaultTempo,
		ClockSource:       ClockInternal,
		SelectedTrackID:   1,
		PlayheadPositions: make(map[int]int, NumTracks),
	}
	for i := 0; i < NumTracks; i++ {
		s.Tracks[i] = DefaultTrack(i + 1)
		s.PlayheadPositions[i+1] = 0
	}
	return s
}

// Clone returns a deep copy safe to hand to other goroutines
func (s State) Clone() State {
	c := s
	c.PlayheadPositions = make(map[int]int, len(s.PlayheadPositions))
	for k, v := range s.PlayheadPositions {
		c.PlayheadPositions[k] = v
	}
	return c
}

// Track returns a pointer to the track with the given id, or nil
func (s *State) Track(id int) *Track {
	if id < 1 || id > NumTracks {
		return nil
	}
	return &s.Tracks[id-1]
}

// SelectedTrack returns the currently selected track
func (s *State) SelectedTrack() *Track {
	if t := s.Track(s.SelectedTrackID); t != nil {
		return t
	}
	return &s.Tracks[0]
}

// Normalize clamps every field into its valid domain. Out-of-range values
// are never rejected.
func (s *State) Normalize() {
	for i := range s.Tracks {
		s.Tracks[i].ID = i + 1
		s.Tracks[i].Normalize()
	}
	if math.IsNaN(s.Tempo) || s.Tempo == 0 {
		s.Tempo = DefaultTempo
	}
	s.Tempo = clampFloat(s.Tempo, MinTempo, MaxTempo)
	if s.ClockSource != ClockExternal {
		s.ClockSource = ClockInternal
	}
	s.SelectedTrackID = clampInt(s.SelectedTrackID, 1, NumTracks)

	if s.PlayheadPositions == nil {
		s.PlayheadPositions = make(map[int]int, NumTracks)
	}
	for k := range s.PlayheadPositions {
		if k < 1 || k > NumTracks {
			delete(s.PlayheadPositions, k)
		}
	}
	for i := range s.Tracks {
		id := i + 1
		s.PlayheadPositions[id] = clampInt(s.PlayheadPositions[id], 0, s.Tracks[i].Pattern.Steps-1)
	}
}

// Normalize clamps the track's fields and keeps pulses <= steps,
// rotation < steps and midiChannel == id.
func (t *Track) Normalize() {
	p := &t.Pattern
	p.Steps = clampInt(p.Steps, MinSteps, MaxSteps)
	p.Pulses = clampInt(p.Pulses, 0, p.Steps)
	p.Rotation = clampInt(p.Rotation, 0, p.Steps-1)
	if !p.Division.valid() {
		p.Division = DivisionEighth
	}

	m := &t.Melodic
	m.Transpose = clampInt(m.Transpose, -MaxTranspose, MaxTranspose)
	if !m.Scale.valid() {
		m.Scale = ScaleChromatic
	}
	m.RootNote = Note(clampInt(int(m.RootNote), 0, 11))
	m.VoicingAmount = clampFloat(m.VoicingAmount, 0, 1)
	if indexOf(VoicingStyles, m.VoicingStyle) < 0 {
		m.VoicingStyle = VoicingFixed
	}
	if indexOf(PhraseShapes, m.PhraseShape) < 0 {
		m.PhraseShape = PhraseCadence1
	}
	m.PhraseRange = clampInt(m.PhraseRange, -MaxPhrase, MaxPhrase)

	t.Velocity = clampInt(t.Velocity, 1, 127)
	t.Sustain = clampFloat(t.Sustain, 0, 1)
	t.Repeats = clampInt(t.Repeats, 0, MaxRepeats)
	t.MIDIChannel = t.ID
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}
