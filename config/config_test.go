package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFromMissing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `output:
  portName: IAC Driver
input:
  portName: LPD8 mk2
statePath: /tmp/arp.json
debug: true
defaultTempo: 96
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Output:       PortConfig{PortName: "IAC Driver"},
		Input:        PortConfig{PortName: "LPD8 mk2"},
		StatePath:    "/tmp/arp.json",
		Debug:        true,
		DefaultTempo: 96,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"output": {"portName": "synth"}, "defaultTempo": 500}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.PortName != "synth" {
		t.Errorf("output %q", cfg.Output.PortName)
	}
	if cfg.Input.PortName != "LPD8" {
		t.Errorf("input default lost: %q", cfg.Input.PortName)
	}
	if cfg.DefaultTempo != maxTempo {
		t.Errorf("tempo %v not clamped", cfg.DefaultTempo)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, doc := range map[string]string{
		"config.yaml": "output: [unclosed",
		"config.json": "{",
	} {
		path := filepath.Join(dir, name)
		os.WriteFile(path, []byte(doc), 0644)
		if _, err := LoadFrom(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Output.PortName = "Digitone"
	cfg.Palette = "/palettes/dusk.gpl"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("got %+v, want %+v", got, cfg)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, defaultTempo},
		{10, minTempo},
		{300, maxTempo},
		{133, 133},
	}
	for _, tt := range tests {
		c := Config{DefaultTempo: tt.in}
		c.Normalize()
		if c.DefaultTempo != tt.want {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, c.DefaultTempo, tt.want)
		}
	}
}
