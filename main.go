package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-arp/config"
	"go-arp/debug"
	"go-arp/midi"
	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-arp/config.{yaml,json})")
	debugLog := flag.Bool("debug", false, "write debug log to ~/.config/go-arp/debug.log")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *debugLog || cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Warning: debug log unavailable: %v\n", err)
		}
		defer debug.Disable()
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	state := loadState(store, cfg.DefaultTempo)

	manager := sequencer.NewManager(state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	// Transport failures are not fatal; the engine runs without that side
	var devices tui.Devices
	transport, err := midi.NewTransport(cfg.Output.PortName, cfg.Input.PortName, manager.Inputs())
	if err != nil {
		debug.Log("main", "midi %s: %v", midi.SetupStage(err), err)
		fmt.Printf("Warning: MIDI unavailable: %v\n", err)
	} else {
		if err := transport.ConnectOutput(); err != nil {
			debug.Log("main", "midi %s: %v", midi.SetupStage(err), err)
		}
		if err := transport.ConnectInput(); err != nil {
			debug.Log("main", "midi %s: %v", midi.SetupStage(err), err)
		}
		manager.SetSink(transport)
		go transport.Run(ctx)
		devices = transport
	}

	palette := theme.Default()
	if cfg.Palette != "" {
		if p, err := theme.LoadGPL(cfg.Palette); err == nil {
			palette = p
		} else {
			debug.Log("main", "palette: %v", err)
		}
	}

	m := tui.NewModel(manager, devices, theme.New(palette))
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	manager.Stop()
	if transport != nil {
		transport.Close()
	}
	if err := store.Save(manager.Snapshot()); err != nil {
		fmt.Printf("Warning: state not saved: %v\n", err)
	}

	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func openStore(cfg *config.Config) (*sequencer.FileStore, error) {
	path := cfg.StatePath
	if path == "" {
		p, err := sequencer.DefaultStatePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return sequencer.NewFileStore(path), nil
}

// loadState reads the saved state once. With nothing saved it starts
// fresh at the configured tempo.
func loadState(store sequencer.Store, tempo float64) sequencer.State {
	saved, err := store.Load()
	if err == nil && saved == nil {
		state := sequencer.NewState()
		state.Tempo = tempo
		state.Normalize()
		return state
	}
	return sequencer.Restore(saved, err)
}
