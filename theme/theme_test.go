package theme

import (
	"strings"
	"testing"
)

func TestParseGPL(t *testing.T) {
	doc := `GIMP Palette
Name: test
Columns: 2
# comment
  0   0   0	black
255 128  64	orange
300 1 1 out of range
bad line
`
	p, err := ParseGPL(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "test" {
		t.Errorf("name %q", p.Name)
	}
	if len(p.Colors) != 2 || p.Colors[1] != (RGB{255, 128, 64}) {
		t.Errorf("colors %v", p.Colors)
	}
}

func TestParseGPLEmpty(t *testing.T) {
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Error("expected error for palette without colors")
	}
}

func TestLookup(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}

	if got := p.Lookup(-1); got != (RGB{0, 0, 0}) {
		t.Errorf("Lookup(-1) = %v", got)
	}
	if got := p.Lookup(2); got != (RGB{200, 100, 50}) {
		t.Errorf("Lookup(2) = %v", got)
	}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
}

func TestNewFallsBackToDefault(t *testing.T) {
	th := New(nil)
	if th.Palette == nil || th.Palette.Name != Default().Name {
		t.Errorf("palette %+v", th.Palette)
	}
	if th.Track(1, 4) == th.Track(4, 4) {
		t.Error("first and last track share a color")
	}
}
