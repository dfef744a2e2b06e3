package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Rest          rune // · no pulse
	Pulse         rune // ● pulse
	Playhead      rune // ▷ playhead on rest
	PlayheadPulse rune // ▶ playhead on pulse
	Beyond        rune // - past track length

	PadOn  rune // ■
	PadOff rune // □

	KnobFill  rune // █
	KnobEmpty rune // ░
}

func New(palette *Palette) *Theme {
	if palette == nil || len(palette.Colors) == 0 {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Rest:          '·',
			Pulse:         '●',
			Playhead:      '▷',
			PlayheadPulse: '▶',
			Beyond:        '-',

			PadOn:  '■',
			PadOff: '□',

			KnobFill:  '█',
			KnobEmpty: '░',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted   = 0.3
	RoleFG      = 0.55
	RoleAccent  = 0.75
	RoleActive  = 0.65
	RoleWarning = 0.85
	RoleSuccess = 1.0
)

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Track returns the color of track id (1-based), spread over the upper
// half of the palette
func (t *Theme) Track(id, numTracks int) lipgloss.Color {
	return rgbToLipgloss(t.TrackRGB(id, numTracks))
}

// TrackRGB is Track as raw RGB
func (t *Theme) TrackRGB(id, numTracks int) RGB {
	if numTracks < 2 {
		return t.Palette.Lookup(RoleAccent)
	}
	return t.Palette.Lookup(0.5 + 0.5*float64(id-1)/float64(numTracks-1))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
