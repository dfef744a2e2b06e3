package widgets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-arp/theme"
)

// RenderPad renders a single colored pad
func RenderPad(color theme.RGB, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(symbol))
}

// RenderPadRow renders a row of colored pads with spacing
func RenderPadRow(colors []theme.RGB, symbols []rune) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c, symbols[i]))
	}
	return out.String()
}

// RenderSteps renders one cell per step (up to width): pulse, rest,
// playhead, and Beyond past the track length
func RenderSteps(steps, width int, pulses []int, playhead int, showPlayhead bool, sym theme.Symbols) string {
	var out strings.Builder
	for i := 0; i < width; i++ {
		if i > 0 {
			out.WriteString(" ")
		}
		if i >= steps {
			out.WriteRune(sym.Beyond)
			continue
		}
		pulse := contains(pulses, i)
		switch {
		case showPlayhead && i == playhead && pulse:
			out.WriteRune(sym.PlayheadPulse)
		case showPlayhead && i == playhead:
			out.WriteRune(sym.Playhead)
		case pulse:
			out.WriteRune(sym.Pulse)
		default:
			out.WriteRune(sym.Rest)
		}
	}
	return out.String()
}

// RenderKnob renders value in [0,1] as a bar of width cells
func RenderKnob(value float64, width int, sym theme.Symbols) string {
	value = max(0, min(1, value))
	filled := int(value*float64(width) + 0.5)
	return strings.Repeat(string(sym.KnobFill), filled) + strings.Repeat(string(sym.KnobEmpty), width-filled)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func contains(sorted []int, v int) bool {
	i := sort.SearchInts(sorted, v)
	return i < len(sorted) && sorted[i] == v
}

func rgbToHex(c theme.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
