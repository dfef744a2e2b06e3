package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"go-arp/widgets"
)

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Track1, Track2, Track3, Track4 key.Binding

	Play  key.Binding
	Tap   key.Binding
	Mute  key.Binding
	Shift key.Binding

	KnobLeft  key.Binding
	KnobRight key.Binding
	KnobUp    key.Binding
	KnobDown  key.Binding
	FineUp    key.Binding
	FineDown  key.Binding

	TempoUp   key.Binding
	TempoDown key.Binding
	Clock     key.Binding
	Panic     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Track1: Key("track 1", "1"),
		Track2: Key("track 2", "2"),
		Track3: Key("track 3", "3"),
		Track4: Key("track 4", "4"),

		Play:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/stop")),
		Tap:   Key("tap tempo", "t"),
		Mute:  Key("mute track", "m"),
		Shift: Key("melodic page", "tab"),

		KnobLeft:  Key("prev knob", "left", "h"),
		KnobRight: Key("next knob", "right", "l"),
		KnobUp:    Key("knob up", "up", "k"),
		KnobDown:  Key("knob down", "down", "j"),
		FineUp:    Key("knob up (fine)", "K", "shift+up"),
		FineDown:  Key("knob down (fine)", "J", "shift+down"),

		TempoUp:   Key("tempo +1", "+", "="),
		TempoDown: Key("tempo -1", "-", "_"),
		Clock:     Key("clock source", "c"),
		Panic:     Key("all notes off", "!"),
		Help:      Key("help", "?"),
		Quit:      Key("quit", "q", "ctrl+c"),
	}
}

func (k keyMap) sections() []widgets.KeySection {
	group := func(title string, bindings ...key.Binding) widgets.KeySection {
		sec := widgets.KeySection{Title: title}
		for _, b := range bindings {
			h := b.Help()
			sec.Keys = append(sec.Keys, widgets.KeyBinding{Key: h.Key, Desc: h.Desc})
		}
		return sec
	}
	return []widgets.KeySection{
		group("Pads", k.Track1, k.Track2, k.Track3, k.Track4, k.Play, k.Tap, k.Mute, k.Shift),
		group("Knobs", k.KnobLeft, k.KnobRight, k.KnobUp, k.KnobDown, k.FineUp, k.FineDown),
		group("Transport", k.TempoUp, k.TempoDown, k.Clock, k.Panic, k.Help, k.Quit),
	}
}
